package form

type Mode int

const (
	ModeLogin Mode = iota
	ModeSignup
)

func (m Mode) String() string {
	if m == ModeSignup {
		return "Sign Up"
	}
	return "Login"
}

// Fields lists the inputs shown in mode m, in display order.
func (m Mode) Fields() []Field {
	if m == ModeSignup {
		return []Field{FieldUsername, FieldEmail, FieldPassword, FieldConfirmPassword}
	}
	return []Field{FieldUsername, FieldPassword}
}

// Sibling is the mode the toggle switches to.
func (m Mode) Sibling() Mode {
	if m == ModeSignup {
		return ModeLogin
	}
	return ModeSignup
}

// AuthDraft is the unsaved content of the login/signup form.
type AuthDraft struct {
	Username        string
	Email           string
	Password        string
	ConfirmPassword string
}

func (d AuthDraft) Value(f Field) string {
	switch f {
	case FieldUsername:
		return d.Username
	case FieldEmail:
		return d.Email
	case FieldPassword:
		return d.Password
	case FieldConfirmPassword:
		return d.ConfirmPassword
	default:
		return ""
	}
}

func (d *AuthDraft) Set(f Field, v string) {
	switch f {
	case FieldUsername:
		d.Username = v
	case FieldEmail:
		d.Email = v
	case FieldPassword:
		d.Password = v
	case FieldConfirmPassword:
		d.ConfirmPassword = v
	}
}

// ValidateAuth checks d for mode. Login only checks presence; signup adds the email
// format, password complexity and confirmation rules.
func ValidateAuth(mode Mode, d AuthDraft) Errors {
	errs := Errors{}

	if d.Username == "" {
		errs[FieldUsername] = MsgUsernameRequired
	}

	if mode == ModeSignup {
		switch {
		case d.Email == "":
			errs[FieldEmail] = MsgEmailRequired
		case !ValidEmail(d.Email):
			errs[FieldEmail] = MsgEmailInvalid
		}
	}

	switch {
	case d.Password == "":
		errs[FieldPassword] = MsgPasswordRequired
	case mode == ModeSignup && !ValidPassword(d.Password):
		errs[FieldPassword] = MsgPasswordRequirements
	}

	if mode == ModeSignup {
		switch {
		case d.ConfirmPassword == "":
			errs[FieldConfirmPassword] = MsgConfirmPasswordRequired
		case d.ConfirmPassword != d.Password:
			errs[FieldConfirmPassword] = MsgPasswordsDoNotMatch
		}
	}

	return errs
}
