// Package wizard collects a registration draft across four ordered steps
// and submits it atomically. Steps are an explicit enum with a transition
// table, so jumping from company info straight to review is simply not
// expressible.
package wizard

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/danaam/danaam-go/domain"
	"github.com/danaam/danaam-go/internal/otp"
)

// Step is one named state of the registration flow.
type Step int

const (
	StepTypeSelect Step = iota
	StepCompanyInfo
	StepContactInfo
	StepCredentials
	StepReview
	StepSubmitted
)

func (s Step) String() string {
	switch s {
	case StepTypeSelect:
		return "TypeSelect"
	case StepCompanyInfo:
		return "CompanyInfo"
	case StepContactInfo:
		return "ContactInfo"
	case StepCredentials:
		return "Credentials"
	case StepReview:
		return "Review"
	case StepSubmitted:
		return "Submitted"
	}
	return fmt.Sprintf("Step(%d)", int(s))
}

// back is the permitted backward transition table. Absent entries cannot go
// back. Back-navigation never re-triggers OTP; the success token survives
// until submission or abandonment.
var back = map[Step]Step{
	StepCompanyInfo: StepTypeSelect,
	StepContactInfo: StepCompanyInfo,
	StepCredentials: StepContactInfo,
	StepReview:      StepCredentials,
}

// fieldStep maps draft field names to the step that owns them, used to route
// server-side validation errors back to the right screen.
var fieldStep = map[string]Step{
	"companyName":             StepCompanyInfo,
	"country":                 StepCompanyInfo,
	"city":                    StepCompanyInfo,
	"commercialLicenseNumber": StepCompanyInfo,
	"commercialLicenseFile":   StepCompanyInfo,
	"taxLicenseFile":          StepCompanyInfo,
	"website":                 StepCompanyInfo,
	"firstName":               StepContactInfo,
	"lastName":                StepContactInfo,
	"jobTitle":                StepContactInfo,
	"email":                   StepContactInfo,
	"phoneNumber":             StepContactInfo,
	"password":                StepCredentials,
	"retryPassword":           StepCredentials,
}

// CompanyInfo is the first form step.
type CompanyInfo struct {
	CompanyName             string
	Country                 string
	City                    string
	CommercialLicenseNumber string
	Website                 string
	CommercialLicenseFile   *domain.FileAttachment
	TaxLicenseFile          *domain.FileAttachment
}

// ContactInfo is the second form step.
type ContactInfo struct {
	FirstName   string
	LastName    string
	JobTitle    string
	Email       string
	PhoneNumber string
}

// Wizard is one per-mount registration flow. It is not safe for concurrent
// use; like the form it models, one actor drives it.
type Wizard struct {
	otpGW domain.OTPGateway
	regGW domain.RegistrationGateway

	step      Step
	draft     domain.RegistrationDraft
	errors    map[string]string
	challenge *otp.Challenge
}

// New creates a wizard at the type-selection step.
func New(otpGW domain.OTPGateway, regGW domain.RegistrationGateway) *Wizard {
	return &Wizard{
		otpGW:  otpGW,
		regGW:  regGW,
		step:   StepTypeSelect,
		errors: map[string]string{},
	}
}

// Step returns the current step.
func (w *Wizard) Step() Step { return w.step }

// Draft returns a copy of the accumulated draft.
func (w *Wizard) Draft() domain.RegistrationDraft { return w.draft }

// Errors returns a copy of the current field error map, keyed by draft
// field name.
func (w *Wizard) Errors() map[string]string {
	out := make(map[string]string, len(w.errors))
	for k, v := range w.errors {
		out[k] = v
	}
	return out
}

// ErrorStep reports which step owns a field error, so a submission failure
// surfaced on the review screen can point at the offending screen.
func (w *Wizard) ErrorStep(field string) (Step, bool) {
	s, ok := fieldStep[field]
	return s, ok
}

// ChooseType picks the registrant population and enters the form.
func (w *Wizard) ChooseType(t domain.RegistrationType) error {
	if w.step != StepTypeSelect {
		return fmt.Errorf("%w: choose type at %s", domain.ErrWizardStep, w.step)
	}
	w.draft.Type = t
	w.step = StepCompanyInfo
	return nil
}

// SetCompanyInfo records the company step's fields. Allowed on any form step
// so edits after back-navigation work.
func (w *Wizard) SetCompanyInfo(info CompanyInfo) {
	w.draft.CompanyName = info.CompanyName
	w.draft.Country = info.Country
	w.draft.City = info.City
	w.draft.CommercialLicenseNumber = info.CommercialLicenseNumber
	w.draft.Website = info.Website
	w.draft.CommercialLicenseFile = info.CommercialLicenseFile
	w.draft.TaxLicenseFile = info.TaxLicenseFile
	w.clearErrors(StepCompanyInfo)
}

// SetContactInfo records the contact step's fields.
func (w *Wizard) SetContactInfo(info ContactInfo) {
	w.draft.FirstName = info.FirstName
	w.draft.LastName = info.LastName
	w.draft.JobTitle = info.JobTitle
	w.draft.Email = info.Email
	w.draft.PhoneNumber = info.PhoneNumber
	w.clearErrors(StepContactInfo)
}

// SetCredentials records the password pair.
func (w *Wizard) SetCredentials(password, retryPassword string) {
	w.draft.Password = password
	w.draft.RetryPassword = retryPassword
	w.clearErrors(StepCredentials)
}

func (w *Wizard) clearErrors(step Step) {
	for field, owner := range fieldStep {
		if owner == step {
			delete(w.errors, field)
		}
	}
}

// Next validates the current step and advances. Leaving ContactInfo is
// special: it sends an OTP for the draft email and returns the challenge to
// drive; the step does not advance until CompleteOTP is called with the
// success token. Validation failures populate Errors and return
// domain.ErrWizardValidation without any network call.
func (w *Wizard) Next(ctx context.Context) (*otp.Challenge, error) {
	switch w.step {
	case StepCompanyInfo:
		if !w.validate(validateCompany(&w.draft)) {
			return nil, domain.ErrWizardValidation
		}
		w.step = StepContactInfo
		return nil, nil

	case StepContactInfo:
		if !w.validate(validateContact(&w.draft)) {
			return nil, domain.ErrWizardValidation
		}
		if w.draft.OTPSuccessToken != "" {
			// Already verified earlier; back-navigation never repeats OTP.
			w.step = StepCredentials
			return nil, nil
		}
		state, err := w.otpGW.SendOTP(ctx, w.draft.Email, domain.PurposeRegistration)
		if err != nil {
			return nil, err
		}
		w.challenge = otp.NewChallenge(w.otpGW, w.draft.Email, domain.PurposeRegistration, state)
		return w.challenge, nil

	case StepCredentials:
		if !w.validate(validateCredentials(&w.draft)) {
			return nil, domain.ErrWizardValidation
		}
		w.step = StepReview
		return nil, nil

	case StepReview:
		return nil, fmt.Errorf("%w: use Submit at %s", domain.ErrWizardStep, w.step)
	}
	return nil, fmt.Errorf("%w: next at %s", domain.ErrWizardStep, w.step)
}

func (w *Wizard) validate(errs map[string]string) bool {
	for field, msg := range errs {
		w.errors[field] = msg
	}
	return len(errs) == 0
}

// CompleteOTP records a successful verification and advances to the
// credentials step. An empty token is rejected; the step gate on the success
// token is the wizard's core invariant.
func (w *Wizard) CompleteOTP(successToken string) error {
	if w.step != StepContactInfo {
		return fmt.Errorf("%w: complete otp at %s", domain.ErrWizardStep, w.step)
	}
	if successToken == "" {
		return domain.ErrOTPTokenRequired
	}
	w.draft.OTPSuccessToken = successToken
	w.challenge = nil
	w.step = StepCredentials
	return nil
}

// AbandonOTP dismisses the challenge dialog; the wizard stays on
// ContactInfo with no success token recorded.
func (w *Wizard) AbandonOTP() {
	if w.challenge != nil {
		w.challenge.Close()
		w.challenge = nil
	}
}

// Back moves one step backwards where permitted. It never revalidates and
// never touches the OTP state.
func (w *Wizard) Back() error {
	prev, ok := back[w.step]
	if !ok {
		return fmt.Errorf("%w: back at %s", domain.ErrWizardStep, w.step)
	}
	w.step = prev
	return nil
}

// Submit sends the assembled draft. On backend field errors the messages
// are mapped onto the owning fields (backend keys arrive PascalCase) and
// the error is returned for toast-level display; the wizard stays on
// Review. On success the wizard reaches Submitted, a terminal state.
func (w *Wizard) Submit(ctx context.Context) error {
	if w.step != StepReview {
		return fmt.Errorf("%w: submit at %s", domain.ErrWizardStep, w.step)
	}
	if w.draft.OTPSuccessToken == "" {
		return domain.ErrOTPTokenRequired
	}

	if err := w.regGW.SubmitRegistration(ctx, &w.draft); err != nil {
		if apiErr, ok := domain.AsAPIError(err); ok {
			for field, msgs := range apiErr.FieldErrors {
				if len(msgs) == 0 {
					continue
				}
				w.errors[lowerFirst(field)] = msgs[0]
			}
		}
		return err
	}
	w.step = StepSubmitted
	return nil
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// acceptedLicenseExts are the file formats the license inputs accept. This
// mirrors the form's input constraint; no content inspection happens here.
var acceptedLicenseExts = map[string]bool{
	".pdf":  true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

func acceptedLicenseFile(f *domain.FileAttachment) bool {
	name := strings.ToLower(f.Name)
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return false
	}
	return acceptedLicenseExts[name[idx:]]
}
