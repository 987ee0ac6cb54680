package openf1

import (
	"context"
	"sort"
)

// LatestPracticeSession resolves the newest practice session of the latest
// meeting. ok is false when the meeting has no practice session.
func (c *Client) LatestPracticeSession(ctx context.Context) (s Session, ok bool, err error) {
	sessions, err := c.Sessions(ctx, "latest")
	if err != nil {
		return Session{}, false, err
	}
	s, ok = SelectLatestPractice(sessions)
	return s, ok, nil
}

// SelectLatestPractice picks the practice session with the greatest SortKey.
// Keys compare as strings; for equal keys the later entry wins.
func SelectLatestPractice(sessions []Session) (Session, bool) {
	practice := make([]Session, 0, len(sessions))
	for _, s := range sessions {
		if s.SessionType == SessionTypePractice {
			practice = append(practice, s)
		}
	}
	if len(practice) == 0 {
		return Session{}, false
	}
	sort.SliceStable(practice, func(i, j int) bool {
		return practice[i].SortKey() < practice[j].SortKey()
	})
	return practice[len(practice)-1], true
}
