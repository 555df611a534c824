package wizard

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danaam/danaam-go/domain"
	"github.com/danaam/danaam-go/internal/mocks"
)

func validCompanyInfo() CompanyInfo {
	return CompanyInfo{
		CompanyName:             "Hassan Contracting",
		Country:                 "Saudi Arabia",
		City:                    "Riyadh",
		CommercialLicenseNumber: "CR-1010101010",
		CommercialLicenseFile:   &domain.FileAttachment{Name: "license.pdf", ContentType: "application/pdf", Data: []byte("pdf")},
	}
}

func validContactInfo() ContactInfo {
	return ContactInfo{
		FirstName:   "Sara",
		LastName:    "Hassan",
		JobTitle:    "Procurement Lead",
		Email:       "sara@hassan.sa",
		PhoneNumber: "+966500000000",
	}
}

// advanceToContact walks a fresh wizard to the contact step.
func advanceToContact(t *testing.T, w *Wizard) {
	t.Helper()
	require.NoError(t, w.ChooseType(domain.TypeContractor))
	w.SetCompanyInfo(validCompanyInfo())
	_, err := w.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, StepContactInfo, w.Step())
}

// advanceToReview walks a fresh wizard all the way to review, completing OTP.
func advanceToReview(t *testing.T, w *Wizard) {
	t.Helper()
	advanceToContact(t, w)
	w.SetContactInfo(validContactInfo())
	challenge, err := w.Next(context.Background())
	require.NoError(t, err)
	require.NotNil(t, challenge)
	require.NoError(t, w.CompleteOTP("success-1"))
	w.SetCredentials("hunter2hunter2", "hunter2hunter2")
	_, err = w.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, StepReview, w.Step())
}

func TestChooseTypeGate(t *testing.T) {
	w := New(mocks.NewMockOTPGateway(), mocks.NewMockRegistrationGateway())

	require.NoError(t, w.ChooseType(domain.TypeSupplier))
	assert.Equal(t, StepCompanyInfo, w.Step())
	assert.Equal(t, domain.TypeSupplier, w.Draft().Type)

	err := w.ChooseType(domain.TypeContractor)
	assert.ErrorIs(t, err, domain.ErrWizardStep)
}

func TestCompanyStepValidationBlocksAdvance(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*CompanyInfo)
		wantField string
	}{
		{
			name:      "empty company name",
			mutate:    func(i *CompanyInfo) { i.CompanyName = "" },
			wantField: "companyName",
		},
		{
			name:      "missing license number",
			mutate:    func(i *CompanyInfo) { i.CommercialLicenseNumber = "" },
			wantField: "commercialLicenseNumber",
		},
		{
			name:      "missing license file",
			mutate:    func(i *CompanyInfo) { i.CommercialLicenseFile = nil },
			wantField: "commercialLicenseFile",
		},
		{
			name: "unsupported license format",
			mutate: func(i *CompanyInfo) {
				i.CommercialLicenseFile = &domain.FileAttachment{Name: "license.exe", Data: []byte("x")}
			},
			wantField: "commercialLicenseFile",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(mocks.NewMockOTPGateway(), mocks.NewMockRegistrationGateway())
			require.NoError(t, w.ChooseType(domain.TypeContractor))

			info := validCompanyInfo()
			tt.mutate(&info)
			w.SetCompanyInfo(info)

			_, err := w.Next(context.Background())
			require.ErrorIs(t, err, domain.ErrWizardValidation)
			assert.Equal(t, StepCompanyInfo, w.Step(), "validation failure must not advance")
			assert.Contains(t, w.Errors(), tt.wantField)

			step, ok := w.ErrorStep(tt.wantField)
			require.True(t, ok)
			assert.Equal(t, StepCompanyInfo, step)
		})
	}
}

func TestErrorsReturnsACopy(t *testing.T) {
	w := New(mocks.NewMockOTPGateway(), mocks.NewMockRegistrationGateway())
	require.NoError(t, w.ChooseType(domain.TypeContractor))

	info := validCompanyInfo()
	info.CompanyName = ""
	w.SetCompanyInfo(info)
	_, err := w.Next(context.Background())
	require.ErrorIs(t, err, domain.ErrWizardValidation)

	got := w.Errors()
	delete(got, "companyName")
	got["city"] = "tampered"

	assert.Contains(t, w.Errors(), "companyName")
	assert.NotContains(t, w.Errors(), "city")
}

func TestContactStepTriggersOTP(t *testing.T) {
	otpGW := mocks.NewMockOTPGateway()
	w := New(otpGW, mocks.NewMockRegistrationGateway())
	advanceToContact(t, w)
	w.SetContactInfo(validContactInfo())

	challenge, err := w.Next(context.Background())
	require.NoError(t, err)
	require.NotNil(t, challenge)
	assert.Equal(t, 1, otpGW.SendCalls)
	assert.Equal(t, "sara@hassan.sa", challenge.Email())
	assert.Equal(t, StepContactInfo, w.Step(), "step holds until the OTP completes")
}

func TestCompleteOTPGatesCredentials(t *testing.T) {
	w := New(mocks.NewMockOTPGateway(), mocks.NewMockRegistrationGateway())
	advanceToContact(t, w)
	w.SetContactInfo(validContactInfo())
	_, err := w.Next(context.Background())
	require.NoError(t, err)

	err = w.CompleteOTP("")
	require.ErrorIs(t, err, domain.ErrOTPTokenRequired)
	assert.Equal(t, StepContactInfo, w.Step())

	require.NoError(t, w.CompleteOTP("success-1"))
	assert.Equal(t, StepCredentials, w.Step())
	assert.Equal(t, "success-1", w.Draft().OTPSuccessToken)
}

func TestAbandonOTPStaysOnContact(t *testing.T) {
	otpGW := mocks.NewMockOTPGateway()
	w := New(otpGW, mocks.NewMockRegistrationGateway())
	advanceToContact(t, w)
	w.SetContactInfo(validContactInfo())
	challenge, err := w.Next(context.Background())
	require.NoError(t, err)
	require.NotNil(t, challenge)

	w.AbandonOTP()
	assert.True(t, challenge.Closed())
	assert.Equal(t, StepContactInfo, w.Step())
	assert.Empty(t, w.Draft().OTPSuccessToken)

	// Leaving the step again starts a brand new exchange.
	_, err = w.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, otpGW.SendCalls)
}

func TestBackNavigationSkipsRepeatOTP(t *testing.T) {
	otpGW := mocks.NewMockOTPGateway()
	w := New(otpGW, mocks.NewMockRegistrationGateway())
	advanceToReview(t, w)
	require.Equal(t, 1, otpGW.SendCalls)

	require.NoError(t, w.Back())
	require.NoError(t, w.Back())
	assert.Equal(t, StepContactInfo, w.Step())

	// Forward again: the retained success token suppresses a second OTP.
	_, err := w.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StepCredentials, w.Step())
	assert.Equal(t, 1, otpGW.SendCalls)
}

func TestBackFromTypeSelectFails(t *testing.T) {
	w := New(mocks.NewMockOTPGateway(), mocks.NewMockRegistrationGateway())
	assert.ErrorIs(t, w.Back(), domain.ErrWizardStep)
}

func TestCredentialsValidation(t *testing.T) {
	tests := []struct {
		name      string
		password  string
		retry     string
		wantField string
	}{
		{"too short", "short", "short", "password"},
		{"mismatch", "hunter2hunter2", "hunter2hunter3", "retryPassword"},
		{"empty", "", "", "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := New(mocks.NewMockOTPGateway(), mocks.NewMockRegistrationGateway())
			advanceToContact(t, w)
			w.SetContactInfo(validContactInfo())
			_, err := w.Next(context.Background())
			require.NoError(t, err)
			require.NoError(t, w.CompleteOTP("success-1"))

			w.SetCredentials(tt.password, tt.retry)
			_, err = w.Next(context.Background())
			require.ErrorIs(t, err, domain.ErrWizardValidation)
			assert.Contains(t, w.Errors(), tt.wantField)
			assert.Equal(t, StepCredentials, w.Step())
		})
	}
}

func TestSubmitSendsFullDraft(t *testing.T) {
	regGW := mocks.NewMockRegistrationGateway()
	w := New(mocks.NewMockOTPGateway(), regGW)
	advanceToReview(t, w)

	require.NoError(t, w.Submit(context.Background()))
	assert.Equal(t, StepSubmitted, w.Step())

	draft := regGW.LastDraft
	require.NotNil(t, draft)
	assert.Equal(t, "Hassan Contracting", draft.CompanyName)
	assert.Equal(t, "sara@hassan.sa", draft.Email)
	assert.Equal(t, "success-1", draft.OTPSuccessToken)
	assert.Equal(t, domain.TypeContractor, draft.Type)
	require.NotNil(t, draft.CommercialLicenseFile)
	assert.Equal(t, "license.pdf", draft.CommercialLicenseFile.Name)
}

func TestSubmitRequiresReviewStep(t *testing.T) {
	w := New(mocks.NewMockOTPGateway(), mocks.NewMockRegistrationGateway())
	advanceToContact(t, w)
	assert.ErrorIs(t, w.Submit(context.Background()), domain.ErrWizardStep)
}

func TestSubmitMapsServerFieldErrors(t *testing.T) {
	regGW := mocks.NewMockRegistrationGateway()
	regGW.SubmitFunc = func(ctx context.Context, draft *domain.RegistrationDraft) error {
		return &domain.APIError{
			Status: 400,
			FieldErrors: map[string][]string{
				"CommercialLicenseNumber": {"License number is already registered."},
				"Email":                   {"An account with this email already exists."},
			},
		}
	}
	w := New(mocks.NewMockOTPGateway(), regGW)
	advanceToReview(t, w)

	err := w.Submit(context.Background())
	require.Error(t, err)
	assert.Equal(t, StepReview, w.Step(), "failed submit stays on review")

	assert.Equal(t, "License number is already registered.", w.Errors()["commercialLicenseNumber"])
	assert.Equal(t, "An account with this email already exists.", w.Errors()["email"])

	step, ok := w.ErrorStep("commercialLicenseNumber")
	require.True(t, ok)
	assert.Equal(t, StepCompanyInfo, step)
	step, ok = w.ErrorStep("email")
	require.True(t, ok)
	assert.Equal(t, StepContactInfo, step)
}
