package dto

type StartConnectionRequest struct {
	InstitutionID string `json:"institutionId"`
	RedirectURL   string `json:"redirectUrl"`
}

type StartConnectionResponse struct {
	Redirect      string `json:"redirect"`
	RequisitionID string `json:"requisitionId"`
}

type InstitutionResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Logo    string `json:"logo,omitempty"`
	Website string `json:"website,omitempty"`
}
