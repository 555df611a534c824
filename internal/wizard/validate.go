package wizard

import (
	"regexp"

	"github.com/danaam/danaam-go/domain"
)

const (
	msgRequired         = "required"
	msgInvalidEmail     = "invalid email address"
	msgPasswordTooShort = "must be at least 8 characters"
	msgPasswordMismatch = "passwords do not match"
	msgBadFileFormat    = "file must be PDF, JPG or PNG"

	minPasswordLength = 8
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func validateCompany(d *domain.RegistrationDraft) map[string]string {
	errs := map[string]string{}
	if d.CompanyName == "" {
		errs["companyName"] = msgRequired
	}
	if d.Country == "" {
		errs["country"] = msgRequired
	}
	if d.City == "" {
		errs["city"] = msgRequired
	}
	if d.CommercialLicenseNumber == "" {
		errs["commercialLicenseNumber"] = msgRequired
	}
	switch {
	case d.CommercialLicenseFile == nil:
		errs["commercialLicenseFile"] = msgRequired
	case !acceptedLicenseFile(d.CommercialLicenseFile):
		errs["commercialLicenseFile"] = msgBadFileFormat
	}
	if d.TaxLicenseFile != nil && !acceptedLicenseFile(d.TaxLicenseFile) {
		errs["taxLicenseFile"] = msgBadFileFormat
	}
	return errs
}

func validateContact(d *domain.RegistrationDraft) map[string]string {
	errs := map[string]string{}
	if d.FirstName == "" {
		errs["firstName"] = msgRequired
	}
	if d.LastName == "" {
		errs["lastName"] = msgRequired
	}
	if d.JobTitle == "" {
		errs["jobTitle"] = msgRequired
	}
	switch {
	case d.Email == "":
		errs["email"] = msgRequired
	case !emailRe.MatchString(d.Email):
		errs["email"] = msgInvalidEmail
	}
	if d.PhoneNumber == "" {
		errs["phoneNumber"] = msgRequired
	}
	return errs
}

func validateCredentials(d *domain.RegistrationDraft) map[string]string {
	errs := map[string]string{}
	switch {
	case d.Password == "":
		errs["password"] = msgRequired
	case len(d.Password) < minPasswordLength:
		errs["password"] = msgPasswordTooShort
	}
	switch {
	case d.RetryPassword == "":
		errs["retryPassword"] = msgRequired
	case d.Password != d.RetryPassword:
		errs["retryPassword"] = msgPasswordMismatch
	}
	return errs
}
