package profile

import "fmt"

type Skill struct {
	ID                string  `json:"_id,omitempty"`
	Skill             string  `json:"skill"`
	YearsOfExperience float64 `json:"yearsOfExperience"`
}

type Project struct {
	ID               string   `json:"_id,omitempty"`
	ProjectName      string   `json:"projectName"`
	Description      string   `json:"description"`
	URL              *string  `json:"url,omitempty"`
	TechnologiesUsed []string `json:"technologiesUsed"`
}

// UniversalResume is a generated resume derived from ParentResumeID.
type UniversalResume struct {
	ID             string `json:"_id"`
	UserID         string `json:"userId,omitempty"`
	ParentResumeID string `json:"parentResumeId"`
	OriginalName   string `json:"originalName"`
	S3URL          string `json:"s3Url"`
}

type Resume struct {
	ID              string           `json:"_id"`
	UserID          string           `json:"userId,omitempty"`
	OriginalName    string           `json:"originalName"`
	S3URL           string           `json:"s3Url"`
	IsPrimary       bool             `json:"isPrimary"`
	Skills          []Skill          `json:"skills"`
	Projects        []Project        `json:"projects"`
	UniversalResume *UniversalResume `json:"universalResume,omitempty"`
}

type UserDetails struct {
	ID              string `json:"_id,omitempty"`
	UserID          string `json:"userId,omitempty"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	Email           string `json:"email"`
	CurrentLocation string `json:"currentLocation,omitempty"`
	Contact         string `json:"contact,omitempty"`
	Github          string `json:"github,omitempty"`
	Linkedin        string `json:"linkedin,omitempty"`
	Portfolio       string `json:"portfolio,omitempty"`
}

func (u UserDetails) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}

type Profile struct {
	UserDetails UserDetails `json:"userDetails"`
	Resumes     []Resume    `json:"resume"`
}

// AttachUniversal returns copies of resumes with their universal resume set,
// matched by parent resume ID. The last universal for a parent wins.
func AttachUniversal(resumes []Resume, universals []UniversalResume) []Resume {
	byParent := make(map[string]UniversalResume, len(universals))
	for _, u := range universals {
		byParent[u.ParentResumeID] = u
	}

	out := make([]Resume, len(resumes))
	for i, r := range resumes {
		r.UniversalResume = nil
		if u, ok := byParent[r.ID]; ok {
			u := u
			r.UniversalResume = &u
		}
		out[i] = r
	}
	return out
}
