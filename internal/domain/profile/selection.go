package profile

type ItemType string

const (
	ItemRegular   ItemType = "regular"
	ItemUniversal ItemType = "universal"
)

// DropdownResumeItem is one selectable resume. Universal items carry their
// parent in Resume.
type DropdownResumeItem struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Type            ItemType         `json:"type"`
	Resume          Resume           `json:"resume"`
	UniversalResume *UniversalResume `json:"universalResume,omitempty"`
}

// BuildDropdownItems lists every resume followed directly by its universal
// variant, if any.
func BuildDropdownItems(resumes []Resume) []DropdownResumeItem {
	items := make([]DropdownResumeItem, 0, len(resumes))
	for _, r := range resumes {
		items = append(items, DropdownResumeItem{
			ID:     r.ID,
			Name:   r.OriginalName,
			Type:   ItemRegular,
			Resume: r,
		})
		if r.UniversalResume != nil {
			items = append(items, DropdownResumeItem{
				ID:              r.UniversalResume.ID,
				Name:            r.UniversalResume.OriginalName + " (Universal)",
				Type:            ItemUniversal,
				Resume:          r,
				UniversalResume: r.UniversalResume,
			})
		}
	}
	return items
}

// InitialItem prefers the primary regular resume, then the first regular
// one, then whatever comes first.
func InitialItem(items []DropdownResumeItem) (DropdownResumeItem, bool) {
	for _, it := range items {
		if it.Type == ItemRegular && it.Resume.IsPrimary {
			return it, true
		}
	}
	for _, it := range items {
		if it.Type == ItemRegular {
			return it, true
		}
	}
	if len(items) > 0 {
		return items[0], true
	}
	return DropdownResumeItem{}, false
}

// ResolveResume returns the resume data behind item. A universal item yields
// its parent's content under the universal resume's ID, name and file URL.
func ResolveResume(item DropdownResumeItem) Resume {
	if item.Type != ItemUniversal || item.UniversalResume == nil {
		return item.Resume
	}
	r := item.Resume
	r.ID = item.UniversalResume.ID
	r.OriginalName = item.UniversalResume.OriginalName
	r.S3URL = item.UniversalResume.S3URL
	return r
}
