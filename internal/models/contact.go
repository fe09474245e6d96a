package models

// ContactMessage is a submission of the public contact form. It is mailed, not stored.
type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}
