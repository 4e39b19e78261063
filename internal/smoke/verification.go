package smoke

import "slices"

// verifyFamily folds the outcomes for one family into a report. Successful
// runs must agree on the ranking and the assigned team.
func verifyFamily(id string, outcomes []outcome) FamilyReport {
	fr := FamilyReport{FamilyID: id, Runs: len(outcomes), Consistent: true}

	var first *outcome
	for i := range outcomes {
		o := &outcomes[i]
		if o.err != nil {
			fr.Failures++
			fr.LastError = o.err
			continue
		}
		if first == nil {
			first = o
			fr.SchoolIDs = o.res.SchoolIDs
			fr.TeamID = o.res.SelectedTeamID
			fr.Reason = o.res.Reason
			continue
		}
		if !sameRecommendation(first.res.SchoolIDs, first.res.SelectedTeamID, o.res.SchoolIDs, o.res.SelectedTeamID) {
			fr.Consistent = false
		}
	}
	return fr
}

func sameRecommendation(aIDs []string, aTeam *string, bIDs []string, bTeam *string) bool {
	if !slices.Equal(aIDs, bIDs) {
		return false
	}
	if aTeam == nil || bTeam == nil {
		return aTeam == nil && bTeam == nil
	}
	return *aTeam == *bTeam
}
