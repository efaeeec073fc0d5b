package socket

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
)

// Client connects to the seek daemon over a Unix socket.
type Client struct {
	sockPath string
}

// NewClient creates a client that will connect to the given socket path.
func NewClient(sockPath string) *Client {
	return &Client{sockPath: sockPath}
}

// Search sends a search request and returns the result.
func (c *Client) Search(params SearchParams) (*SearchResult, error) {
	resp, err := c.call(Request{
		ID:     uuid.NewString(),
		Method: MethodSearch,
		Params: params,
	})
	if err != nil {
		return nil, err
	}
	return decodeResult[SearchResult](resp)
}

// Health sends a health check request.
func (c *Client) Health() (*HealthResult, error) {
	resp, err := c.call(Request{
		ID:     uuid.NewString(),
		Method: MethodHealth,
	})
	if err != nil {
		return nil, err
	}
	return decodeResult[HealthResult](resp)
}

// Reindex asks the daemon to rebuild its index from the store, with an extended timeout.
func (c *Client) Reindex() (*ReindexResult, error) {
	resp, err := c.callWithTimeout(Request{
		ID:     uuid.NewString(),
		Method: MethodReindex,
	}, 60*time.Second)
	if err != nil {
		return nil, err
	}
	return decodeResult[ReindexResult](resp)
}

// Import asks the daemon to load a snapshot file into its store and rebuild.
func (c *Client) Import(path string) (*ReindexResult, error) {
	resp, err := c.callWithTimeout(Request{
		ID:     uuid.NewString(),
		Method: MethodImport,
		Params: ImportParams{Path: path},
	}, 60*time.Second)
	if err != nil {
		return nil, err
	}
	return decodeResult[ReindexResult](resp)
}

// Shutdown sends a shutdown request to the daemon.
func (c *Client) Shutdown() error {
	_, err := c.call(Request{
		ID:     uuid.NewString(),
		Method: MethodShutdown,
	})
	return err
}

// Ping checks if the daemon is reachable.
func (c *Client) Ping() bool {
	conn, err := net.DialTimeout("unix", c.sockPath, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// decodeResult re-marshals the generic result into T.
func decodeResult[T any](resp *Response) (*T, error) {
	resultJSON, err := json.Marshal(resp.Result)
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	var result T
	if err := json.Unmarshal(resultJSON, &result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	return &result, nil
}

func (c *Client) call(req Request) (*Response, error) {
	return c.callWithTimeout(req, 5*time.Second)
}

func (c *Client) callWithTimeout(req Request, timeout time.Duration) (*Response, error) {
	conn, err := net.DialTimeout("unix", c.sockPath, 2*time.Second)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	defer conn.Close()

	// Set deadline for the whole request/response
	conn.SetDeadline(time.Now().Add(timeout))

	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read: %w", err)
		}
		return nil, errors.New("empty response")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("server error: %s", resp.Error)
	}
	return &resp, nil
}
