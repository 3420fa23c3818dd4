package session

import (
	"errors"
	"fmt"

	"marketing-studio/internal/marketing"
)

var ErrOutOfRange = errors.New("history index out of range")

// History is the revertible log of results. The last entry is the one on
// display whenever the log is non-empty.
type History struct {
	entries []marketing.Result
}

// Reset replaces the log with a single result.
func (h *History) Reset(r marketing.Result) {
	h.entries = []marketing.Result{r}
}

func (h *History) Append(r marketing.Result) {
	h.entries = append(h.entries, r)
}

// Revert truncates the log to entries [0..k].
func (h *History) Revert(k int) error {
	if k < 0 || k >= len(h.entries) {
		return fmt.Errorf("%w: %d of %d", ErrOutOfRange, k, len(h.entries))
	}
	h.entries = h.entries[:k+1:k+1]
	return nil
}

// Clear keeps only the current result.
func (h *History) Clear() {
	if len(h.entries) == 0 {
		return
	}
	h.entries = []marketing.Result{h.entries[len(h.entries)-1]}
}

func (h *History) Empty() {
	h.entries = nil
}

func (h *History) Current() (marketing.Result, bool) {
	if len(h.entries) == 0 {
		return marketing.Result{}, false
	}
	return h.entries[len(h.entries)-1], true
}

func (h *History) Len() int {
	return len(h.entries)
}

func (h *History) Entries() []marketing.Result {
	return append([]marketing.Result(nil), h.entries...)
}
