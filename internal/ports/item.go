package ports

// Item is one indexed corpus entry. ID equals the item's position in the
// epoch's item store and means nothing outside that epoch.
// Exactly one of the kind payloads is non-nil, matching Kind.
type Item struct {
	ID         uint32
	Kind       Kind
	Title      string
	URL        string
	Origin     string // scheme://host[:port], empty when the URL does not parse
	Hostname   string // lowercased, empty when the URL does not parse
	Path       string
	FaviconURL string

	Tab      *TabFields
	Bookmark *BookmarkFields
	History  *HistoryFields
	Download *DownloadFields
	TopSite  *TopSiteFields
}

// TabFields are the tab-specific item fields.
type TabFields struct {
	TabID        int64
	WindowID     int64
	Active       bool
	Audible      bool
	LastAccessed int64
}

// BookmarkFields are the bookmark-specific item fields.
type BookmarkFields struct {
	FolderPath []string
	FolderKey  string
	DateAdded  int64
}

// HistoryFields are the history-specific item fields.
type HistoryFields struct {
	LastVisitTime int64
	VisitCount    int
}

// DownloadFields are the download-specific item fields.
type DownloadFields struct {
	State         string // normalized: complete, in_progress, interrupted, paused, cancelled, ...
	BytesReceived int64
	TotalBytes    int64
	StartTime     int64
	EndTime       int64
	Filename      string
	Extension     string
}

// TopSiteFields are the top-site-specific item fields.
type TopSiteFields struct {
	VisitCount int
}

// Timestamp returns the freshest of lastAccessed/lastVisitTime/dateAdded,
// or 0 when the item carries none of them.
func (it *Item) Timestamp() int64 {
	var ts int64
	if it.Tab != nil && it.Tab.LastAccessed > ts {
		ts = it.Tab.LastAccessed
	}
	if it.History != nil && it.History.LastVisitTime > ts {
		ts = it.History.LastVisitTime
	}
	if it.Bookmark != nil && it.Bookmark.DateAdded > ts {
		ts = it.Bookmark.DateAdded
	}
	return ts
}

// DownloadTime returns the completion time, falling back to the start time.
func (it *Item) DownloadTime() int64 {
	if it.Download == nil {
		return 0
	}
	if it.Download.EndTime > 0 {
		return it.Download.EndTime
	}
	return it.Download.StartTime
}
