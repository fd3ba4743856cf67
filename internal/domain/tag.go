package domain

// Tag is the duration category used to color recipe nodes.
type Tag string

const (
	Tag15Minutes Tag = "15-minutes"
	Tag30Minutes Tag = "30-minutes"
	Tag60Minutes Tag = "60-minutes"
	TagOver60    Tag = "over60"
)

// tagPriority lists raw tags in the order they are checked.
var tagPriority = []struct {
	raw string
	tag Tag
}{
	{"15-minutes-or-less", Tag15Minutes},
	{"30-minutes-or-less", Tag30Minutes},
	{"60-minutes-or-less", Tag60Minutes},
}

// ClassifyTag returns the highest-priority duration tag present in rawTags,
// or TagOver60 when none is present.
func ClassifyTag(rawTags []string) Tag {
	for _, p := range tagPriority {
		for _, t := range rawTags {
			if t == p.raw {
				return p.tag
			}
		}
	}
	return TagOver60
}
