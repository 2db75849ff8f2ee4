package templates

import (
	"time"
)

// Brand carries the sender identity shown in every email.
type Brand struct {
	AppName     string
	CompanyName string
	SupportURL  string
}

// Option pattern
type Option func(*EmailData)

func WithTime(t time.Time) Option {
	return func(d *EmailData) { d.Time = t.UTC().Format("02 January 2006, 15:04") }
}

func WithChanges(ch []string) Option {
	return func(d *EmailData) { d.Changes = ch }
}

func newData(b Brand, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:        name,
		Email:       email,
		Type:        typ,
		AppName:     b.AppName,
		CompanyName: b.CompanyName,
		SupportURL:  b.SupportURL,
	}
	for _, o := range opts {
		o(&d)
	}
	return d
}

func NewWelcomeData(b Brand, name, email string, opts ...Option) EmailData {
	return newData(b, Welcome, name, email, opts...)
}

func NewProfileUpdatedData(b Brand, name, email string, opts ...Option) EmailData {
	return newData(b, ProfileUpdated, name, email, opts...)
}
