package ranking

import "strings"

// SelectTeam picks the team to assign from the top school's teams.
//
// The first team (in candidate order) whose sport contains any interest
// token wins. Without a match the first team is used; a school without
// teams yields nil. Interest tokens are expected in lowercase.
func SelectTeam(teams []TeamRef, interests []string) *string {
	if len(teams) == 0 {
		return nil
	}
	for _, t := range teams {
		sport := strings.ToLower(t.Sport)
		for _, tok := range interests {
			if tok != "" && strings.Contains(sport, tok) {
				id := t.TeamID
				return &id
			}
		}
	}
	id := teams[0].TeamID
	return &id
}
