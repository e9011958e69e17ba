package chatlog

import (
	"strings"

	apperrors "ask_analytics/errors"
)

// School identifies one participating institution in the shared service:
// its display names, the queues patrons reach it through, and the suffix
// its operator accounts carry.
type School struct {
	FullName       string
	ShortName      string
	Queues         []string
	OperatorSuffix string
}

// Registry holds the participating schools. The slice order is the
// service's canonical listing order.
var Registry = []School{
	{
		FullName:       "University of Toronto",
		ShortName:      "Toronto",
		Queues:         []string{"toronto-st-george", "toronto-st-george-txt", "toronto-mississauga", "toronto-scarborough", "toronto-proactive"},
		OperatorSuffix: "tor",
	},
	{
		FullName:       "University of Ottawa",
		ShortName:      "Ottawa",
		Queues:         []string{"ottawa", "ottawa-fr", "ottawa-txt"},
		OperatorSuffix: "ott",
	},
	{
		FullName:       "Western University",
		ShortName:      "Western",
		Queues:         []string{"western", "western-txt", "western-proactive"},
		OperatorSuffix: "uwo",
	},
	{
		FullName:       "Queens University",
		ShortName:      "Queens",
		Queues:         []string{"queens", "queens-txt"},
		OperatorSuffix: "que",
	},
	{
		FullName:       "York University",
		ShortName:      "York",
		Queues:         []string{"york", "york-fr", "york-txt", "york-glendon-fr"},
		OperatorSuffix: "yor",
	},
	{
		FullName:       "McMaster University",
		ShortName:      "McMaster",
		Queues:         []string{"mcmaster", "mcmaster-txt"},
		OperatorSuffix: "mac",
	},
	{
		FullName:       "University of Waterloo",
		ShortName:      "Waterloo",
		Queues:         []string{"waterloo", "waterloo-txt"},
		OperatorSuffix: "wat",
	},
	{
		FullName:       "University of Guelph",
		ShortName:      "Guelph",
		Queues:         []string{"guelph", "guelph-txt", "guelph-proactive"},
		OperatorSuffix: "gue",
	},
	{
		FullName:       "Carleton University",
		ShortName:      "Carleton",
		Queues:         []string{"carleton", "carleton-txt"},
		OperatorSuffix: "car",
	},
	{
		FullName:       "Toronto Metropolitan University",
		ShortName:      "TMU",
		Queues:         []string{"tmu", "tmu-txt"},
		OperatorSuffix: "tmu",
	},
	{
		FullName:       "Brock University",
		ShortName:      "Brock",
		Queues:         []string{"brock", "brock-txt"},
		OperatorSuffix: "bro",
	},
	{
		FullName:       "University of Windsor",
		ShortName:      "Windsor",
		Queues:         []string{"windsor", "windsor-txt"},
		OperatorSuffix: "win",
	},
	{
		FullName:       "Laurentian University",
		ShortName:      "Laurentian",
		Queues:         []string{"laurentian", "laurentian-fr"},
		OperatorSuffix: "lau",
	},
	{
		FullName:       "Scholars Portal",
		ShortName:      "Scholars Portal",
		Queues:         []string{"scholars-portal", "scholars-portal-fr", "practice-webinars"},
		OperatorSuffix: "sp",
	},
}

// FindSchool looks a school up by full or short name, case-insensitively.
func FindSchool(name string) (School, error) {
	needle := strings.ToLower(strings.TrimSpace(name))
	for _, s := range Registry {
		if needle == strings.ToLower(s.FullName) || needle == strings.ToLower(s.ShortName) {
			return s, nil
		}
	}
	return School{}, &apperrors.ValidationError{Field: "school", Err: apperrors.ErrSchoolNotFound}
}

// SchoolByQueue maps a queue name to its owning school. Unknown queues
// return false.
func SchoolByQueue(queue string) (School, bool) {
	for _, s := range Registry {
		for _, q := range s.Queues {
			if q == queue {
				return s, true
			}
		}
	}
	return School{}, false
}

// SchoolByOperator maps an operator account to its home school by the
// suffix after the final underscore (e.g. "jsmith_tor" -> Toronto).
func SchoolByOperator(operator string) (School, bool) {
	idx := strings.LastIndex(operator, "_")
	if idx < 0 || idx == len(operator)-1 {
		return School{}, false
	}
	suffix := strings.ToLower(operator[idx+1:])
	for _, s := range Registry {
		if s.OperatorSuffix == suffix {
			return s, true
		}
	}
	return School{}, false
}
