package viewmodels

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/dkeye/Jukebox/internal/domain"
)

// QueueEntry is one numbered line of the paginated queue view.
type QueueEntry struct {
	Index    int
	Title    string
	Duration string
}

// QueuePage is the paginated queue view. Page is always clamped to
// [1, TotalPages].
type QueuePage struct {
	Now        string
	Entries    []QueueEntry
	Page       int
	TotalPages int
	Total      int
	Pager      []Control
}

// BuildQueuePage projects the queue onto the requested page.
func BuildQueuePage(st SessionState, page, pageSize int) QueuePage {
	if pageSize < 1 {
		pageSize = 1
	}

	chunks := lo.Chunk(st.Queue, pageSize)
	totalPages := len(chunks)
	if totalPages == 0 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	qp := QueuePage{
		Page:       page,
		TotalPages: totalPages,
		Total:      len(st.Queue),
		Pager: []Control{
			{ID: "queue_prev", Enabled: page > 1},
			{ID: "queue_next", Enabled: page < totalPages},
			{ID: "queue_close", Enabled: true},
		},
	}

	if st.Current != nil {
		qp.Now = fmt.Sprintf("%s (%s)", st.Current.Title, FormatDuration(st.Current.Duration))
	}

	if len(chunks) == 0 {
		return qp
	}
	offset := (page - 1) * pageSize
	qp.Entries = lo.Map(chunks[page-1], func(t domain.Track, i int) QueueEntry {
		return QueueEntry{
			Index:    offset + i + 1,
			Title:    t.Title,
			Duration: FormatDuration(t.Duration),
		}
	})
	return qp
}
