package history

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type HistorySuite struct {
	suite.Suite
	base time.Time
}

func TestHistorySuite(t *testing.T) {
	suite.Run(t, new(HistorySuite))
}

func (s *HistorySuite) SetupTest() {
	s.base = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
}

// events builds n events, newest first, with IDs "v0".."v{n-1}".
func (s *HistorySuite) events(n int) []Event {
	out := make([]Event, n)
	for i := range out {
		out[i] = Event{
			VerifiedAt:     s.base.Add(-time.Duration(i) * time.Hour),
			VerificationID: fmt.Sprintf("v%d", i),
			IsVerified:     i%2 == 0,
		}
	}
	return out
}

func ids(events []Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.VerificationID
	}
	return out
}

func (s *HistorySuite) TestTwelveEventsFivePerPage() {
	h := New(5)
	h.Seed(s.events(12), 5)

	s.Equal(PageDescriptor{CurrentPage: 1, TotalPages: 3}, h.Descriptor())
	s.True(h.Descriptor().HasControls())

	s.Equal([]string{"v0", "v1", "v2", "v3", "v4"}, ids(h.Page(1)))
	s.Equal([]string{"v10", "v11"}, ids(h.Page(3)))

	s.Run("out of range clamps to last page", func() {
		s.Equal([]string{"v10", "v11"}, ids(h.Page(5)))
		s.Equal(3, h.Descriptor().CurrentPage)
	})

	s.Run("below range clamps to first page", func() {
		s.Equal(ids(h.Page(1)), ids(h.Page(-3)))
		s.Equal(1, h.Descriptor().CurrentPage)
	})
}

func (s *HistorySuite) TestPrependResetsToFirstPage() {
	h := New(5)
	h.Seed(s.events(6), 5)
	h.Page(2)
	s.Equal(2, h.Descriptor().CurrentPage)

	fresh := Event{VerifiedAt: s.base.Add(time.Hour), VerificationID: "new", IsVerified: true}
	h.Prepend(fresh)

	s.Equal(1, h.Descriptor().CurrentPage)
	s.Equal(7, h.Len())
	s.Equal(fresh, h.Page(1)[0])
	s.Equal(2, h.Descriptor().TotalPages)
}

func (s *HistorySuite) TestPrependDoesNotResort() {
	h := New(10)
	h.Seed(s.events(2), 10)

	older := Event{VerifiedAt: s.base.Add(-72 * time.Hour), VerificationID: "older"}
	h.Prepend(older)
	s.Equal([]string{"older", "v0", "v1"}, ids(h.Events()))
}

func (s *HistorySuite) TestEmptyHistory() {
	h := New(5)
	s.Equal(PageDescriptor{CurrentPage: 1, TotalPages: 1}, h.Descriptor())
	s.False(h.Descriptor().HasControls())

	page := h.Page(1)
	s.NotNil(page)
	s.Empty(page)
	s.Empty(h.Page(4))

	h.Seed([]Event{}, 5)
	s.Equal(1, h.Descriptor().TotalPages)
}

func (s *HistorySuite) TestNonPositivePageSizeDefaultsToOne() {
	for _, size := range []int{0, -5} {
		h := New(size)
		h.Seed(s.events(3), size)
		s.Equal(1, h.PageSize())
		s.Equal(3, h.Descriptor().TotalPages)
		s.Equal([]string{"v2"}, ids(h.Page(3)))
	}
}

func (s *HistorySuite) TestSeedCopiesInput() {
	in := s.events(3)
	h := New(5)
	h.Seed(in, 5)
	in[0].VerificationID = "mutated"
	s.Equal("v0", h.Events()[0].VerificationID)

	page := h.Page(1)
	page[1].VerificationID = "mutated"
	s.Equal("v1", h.Events()[1].VerificationID)
}

func (s *HistorySuite) TestSeedResetsPage() {
	h := New(2)
	h.Seed(s.events(6), 2)
	h.Page(3)
	h.Seed(s.events(4), 2)
	s.Equal(PageDescriptor{CurrentPage: 1, TotalPages: 2}, h.Descriptor())
}

func (s *HistorySuite) TestCurrentKeepsPage() {
	h := New(2)
	h.Seed(s.events(5), 2)
	h.Page(2)
	s.Equal([]string{"v2", "v3"}, ids(h.Current()))
	s.Equal(2, h.Descriptor().CurrentPage)
}

func (s *HistorySuite) TestEventWireShape() {
	e := Event{VerifiedAt: s.base, VerificationID: "abc", IsVerified: true}
	raw, err := json.Marshal(e)
	s.Require().NoError(err)
	s.JSONEq(`{"verification_date":"2024-05-01T12:00:00Z","verification_id":"abc","is_verified":true}`, string(raw))
}
