package dto

type SubmissionRequest struct {
	JobTitle       string `json:"jobTitle"`
	JobDescription string `json:"jobDescription"`
	JobLink        string `json:"jobLink"`
	CompanyName    string `json:"companyName"`
	CompanyURL     string `json:"companyUrl"`
	CompanyLogo    string `json:"companyLogo"`
	Location       string `json:"location"`
	Priority       string `json:"priority"`
	Status         string `json:"status"`
}
