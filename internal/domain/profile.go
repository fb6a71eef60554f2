package domain

// Address is the single delivery address an identity owns.
type Address struct {
	UserID      *int64 `json:"user_id,omitempty"`
	Address     string `json:"address"`
	City        string `json:"city"`
	Postcode    string `json:"postcode"`
	Email       string `json:"email"`
	Phonenumber string `json:"phonenumber"`
}

// Person is the single contact record an identity owns.
type Person struct {
	UserID      *int64 `json:"user_id,omitempty"`
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	CompanyName string `json:"company_name"`
}

// AddressSnapshot is the frozen copy embedded into an order.
type AddressSnapshot struct {
	Address     string `json:"address"`
	City        string `json:"city"`
	Postcode    string `json:"postcode"`
	Email       string `json:"email"`
	Phonenumber string `json:"phonenumber"`
}

// PersonSnapshot is the frozen copy embedded into an order.
type PersonSnapshot struct {
	Firstname   string `json:"firstname"`
	Lastname    string `json:"lastname"`
	CompanyName string `json:"company_name"`
}

func (a *Address) Snapshot() AddressSnapshot {
	return AddressSnapshot{
		Address:     a.Address,
		City:        a.City,
		Postcode:    a.Postcode,
		Email:       a.Email,
		Phonenumber: a.Phonenumber,
	}
}

func (p *Person) Snapshot() PersonSnapshot {
	return PersonSnapshot{
		Firstname:   p.Firstname,
		Lastname:    p.Lastname,
		CompanyName: p.CompanyName,
	}
}
