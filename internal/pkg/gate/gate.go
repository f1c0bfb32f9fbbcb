// Package gate decides per-item content accessibility from an access
// evaluation result. It is the single place where the premium/free
// distinction is enforced, and it runs server-side at the API boundary.
package gate

import (
	"github.com/bodhiverse/bodhika/app/models"
	"github.com/bodhiverse/bodhika/internal/pkg/access"
)

// Item is the content metadata the gate needs. Content models implement it
// via the freeness of the record itself.
type Item interface {
	IsAlwaysFree() bool
}

// CanAccess reports whether an item is accessible under the given evaluation
// result: always-free items are open to anyone with a plan, everything else
// needs an unlocked premium plan.
func CanAccess(item Item, res access.Result) bool {
	if item.IsAlwaysFree() {
		return true
	}
	return res.IsPremiumUnlocked
}

// meta is a plain value implementation of Item for content types.
type meta struct{ alwaysFree bool }

func (m meta) IsAlwaysFree() bool { return m.alwaysFree }

// ForEBook wraps an ebook's gating metadata.
func ForEBook(e *models.EBook) Item {
	return meta{alwaysFree: e.AlwaysFree}
}

// ForVideo wraps a video's gating metadata.
func ForVideo(v *models.Video) Item {
	return meta{alwaysFree: v.AlwaysFree}
}

// ForWebinar wraps a webinar's gating metadata. Unpaid webinars are treated
// as always free regardless of the flag.
func ForWebinar(w *models.Webinar) Item {
	return meta{alwaysFree: w.AlwaysFree || !w.IsPaid}
}
