package dto

type UserCreate struct {
	OrgID  string  `json:"_org_id"`
	Role   string  `json:"role"`
	Name   string  `json:"name"`
	Mobile string  `json:"mobile"`
	Email  *string `json:"email"`
	Locale string  `json:"locale"`
	Status string  `json:"status"`
}

type UserUpdate struct {
	Role   *string `json:"role"`
	Name   *string `json:"name"`
	Mobile *string `json:"mobile"`
	Email  *string `json:"email"`
	Locale *string `json:"locale"`
	Status *string `json:"status"`
}
