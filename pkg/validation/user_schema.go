package validation

// CreateUserPayload is the create body {name, email, password}. Nil means the
// key was absent or null; nulls are rejected by ValidateCreate.
type CreateUserPayload struct {
	Name     *string
	Email    *string
	Password *string

	nulls []string
}

func (p *CreateUserPayload) UnmarshalJSON(data []byte) error {
	o, err := decodeObject(data)
	if err != nil {
		return err
	}
	*p = CreateUserPayload{
		Name:     o.str("name"),
		Email:    o.str("email"),
		Password: o.str("password"),
	}
	p.nulls = o.nulls
	return o.errs.orNil()
}

// UpdateUserPayload is the update body
// {name?, email?, oldPassword?, password?, confirmPassword?}.
type UpdateUserPayload struct {
	Name            *string
	Email           *string
	OldPassword     *string
	Password        *string
	ConfirmPassword *string

	nulls []string
}

func (p *UpdateUserPayload) UnmarshalJSON(data []byte) error {
	o, err := decodeObject(data)
	if err != nil {
		return err
	}
	*p = UpdateUserPayload{
		Name:            o.str("name"),
		Email:           o.str("email"),
		OldPassword:     o.str("oldPassword"),
		Password:        o.str("password"),
		ConfirmPassword: o.str("confirmPassword"),
	}
	p.nulls = o.nulls
	return o.errs.orNil()
}

// ValidateCreate checks the create schema:
//
//	name      required
//	email     required, email
//	password  required, min 6
func ValidateCreate(p CreateUserPayload) error {
	errs := Errors{}
	rejectNulls(errs, p.nulls)
	requireString(errs, "name", p.Name, "required")
	requireString(errs, "email", p.Email, "required,email")
	requireString(errs, "password", p.Password, "required,pwd")
	return errs.orNil()
}

// ValidateUpdate checks the update schema. Each rule looks at one field; the
// dependencies are explicit:
//
//	name             optional
//	email            optional, email
//	oldPassword      optional, min 6
//	password         optional, min 6; required when oldPassword is present
//	confirmPassword  required and equal to password when password is present
//
// A field sent as null fails in either mode.
func ValidateUpdate(p UpdateUserPayload) error {
	errs := Errors{}
	rejectNulls(errs, p.nulls)
	optionalString(errs, "email", p.Email, "email")
	optionalString(errs, "oldPassword", p.OldPassword, "pwd")

	if p.OldPassword != nil {
		requireString(errs, "password", p.Password, "required,pwd")
	} else {
		optionalString(errs, "password", p.Password, "pwd")
	}

	if p.Password != nil {
		requireString(errs, "confirmPassword", p.ConfirmPassword, "required")
		if p.ConfirmPassword != nil && *p.ConfirmPassword != *p.Password {
			errs.add("confirmPassword", "must be equal to password field")
		}
	}
	return errs.orNil()
}

func requireString(errs Errors, field string, v *string, tag string) {
	if v == nil {
		errs.add(field, "is required")
		return
	}
	errs.check(field, *v, tag)
}

func optionalString(errs Errors, field string, v *string, tag string) {
	if v == nil {
		return
	}
	errs.check(field, *v, tag)
}
