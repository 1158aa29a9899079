// Package profile serves the profile page and the profile editor.
package profile

// InputField describes one editable profile value.
type InputField struct {
	Name  string
	Label string
	Type  string
}

// InputFields lists the editor fields in display order.
var InputFields = []InputField{
	{Name: "name", Label: "Full Name", Type: "text"},
	{Name: "email", Label: "Email Address", Type: "email"},
	{Name: "title", Label: "Professional Title", Type: "text"},
	{Name: "description", Label: "Short Bio", Type: "textarea"},
	{Name: "address", Label: "Street Address", Type: "text"},
	{Name: "phone", Label: "Phone Number", Type: "tel"},
	{Name: "city", Label: "City", Type: "text"},
	{Name: "country", Label: "Country", Type: "text"},
	{Name: "facebook", Label: "Facebook Profile", Type: "url"},
	{Name: "twitter", Label: "Twitter Handle", Type: "url"},
	{Name: "linkedin", Label: "LinkedIn Profile", Type: "url"},
	{Name: "instagram", Label: "Instagram Profile", Type: "url"},
}

// FormField is an InputField with its current value and error.
type FormField struct {
	InputField
	Value string
	Error string
}

type profileForm struct {
	Name        string `form:"name" validate:"required,max=100"`
	Email       string `form:"email" validate:"required,email"`
	Title       string `form:"title" validate:"max=100"`
	Description string `form:"description" validate:"max=500"`
	Address     string `form:"address" validate:"max=200"`
	Phone       string `form:"phone" validate:"max=32"`
	City        string `form:"city" validate:"max=100"`
	Country     string `form:"country" validate:"max=100"`
	Facebook    string `form:"facebook" validate:"omitempty,url"`
	Twitter     string `form:"twitter" validate:"omitempty,url"`
	Linkedin    string `form:"linkedin" validate:"omitempty,url"`
	Instagram   string `form:"instagram" validate:"omitempty,url"`
}

func formFrom(values map[string]string) profileForm {
	return profileForm{
		Name:        values["name"],
		Email:       values["email"],
		Title:       values["title"],
		Description: values["description"],
		Address:     values["address"],
		Phone:       values["phone"],
		City:        values["city"],
		Country:     values["country"],
		Facebook:    values["facebook"],
		Twitter:     values["twitter"],
		Linkedin:    values["linkedin"],
		Instagram:   values["instagram"],
	}
}

func formFields(values, errs map[string]string) []FormField {
	fields := make([]FormField, 0, len(InputFields))
	for _, f := range InputFields {
		fields = append(fields, FormField{InputField: f, Value: values[f.Name], Error: errs[f.Name]})
	}
	return fields
}
