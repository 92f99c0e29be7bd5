package series

// ItemSnapshot is the serializable state of one tracked item.
type ItemSnapshot struct {
	Identifier string `json:"identifier"`
	Resolved   bool   `json:"resolved"`
	URL        string `json:"url,omitempty"`
	Title      string `json:"title,omitempty"`
	Date       string `json:"date,omitempty"`
	FileName   string `json:"file_name,omitempty"`
	Missing    bool   `json:"missing"`
	Video      bool   `json:"video"`
	Audio      bool   `json:"audio"`
	Segments   bool   `json:"segments"`
	Document   bool   `json:"document"`
	Chunks     int    `json:"chunks"`
}

// RootsSnapshot lists the artifact directories of a series.
type RootsSnapshot struct {
	Video     string `json:"video"`
	Audio     string `json:"audio"`
	Segments  string `json:"segment"`
	Documents string `json:"markdown"`
}

// Snapshot is the serializable state of a series.
type Snapshot struct {
	Name        string         `json:"name"`
	SearchQuery string         `json:"search_query"`
	Roots       RootsSnapshot  `json:"roots"`
	Items       []ItemSnapshot `json:"items"`
}

// Snapshot reports membership, identities, and artifact presence without
// contacting any collaborator.
func (s *Series) Snapshot() Snapshot {
	roots := s.pipeline.Roots
	snap := Snapshot{
		Name:        s.name,
		SearchQuery: s.query,
		Roots: RootsSnapshot{
			Video:     roots.Video,
			Audio:     roots.Audio,
			Segments:  roots.Segments,
			Documents: roots.Documents,
		},
		Items: make([]ItemSnapshot, 0, len(s.order)),
	}
	for _, item := range s.Items() {
		st := item.Status()
		entry := ItemSnapshot{
			Identifier: item.Identifier(),
			Resolved:   st.Resolved,
			Missing:    st.Missing,
			Video:      st.Video,
			Audio:      st.Audio,
			Segments:   st.Segments,
			Document:   st.Document,
			Chunks:     st.Chunks,
		}
		if identity, ok := item.Identity(); ok {
			entry.URL = identity.URL
			entry.Title = identity.Title
			entry.Date = identity.Date
			entry.FileName = identity.FileName
		}
		snap.Items = append(snap.Items, entry)
	}
	return snap
}
