// ABOUTME: Optional activity journal for the board service.
// ABOUTME: A failed journal write is logged and never fails the board mutation it describes.
package app

import (
	"fmt"
	"log"

	"github.com/2389-research/corkboard/store"
)

// Recorder receives one entry per successful board change. *store.Journal
// satisfies it.
type Recorder interface {
	Append(e store.Entry) error
}

// record appends to the journal when one is configured. Callers hold s.mu.
func (s *BoardService) record(action, subject, detail string, args ...any) {
	if s.journal == nil {
		return
	}
	if len(args) > 0 {
		detail = fmt.Sprintf(detail, args...)
	}
	e := store.Entry{At: s.now().UTC(), Action: action, Subject: subject, Detail: detail}
	if err := s.journal.Append(e); err != nil {
		log.Printf("component=app action=journal err=%v", err)
	}
}
