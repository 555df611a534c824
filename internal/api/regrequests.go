package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/danaam/danaam-go/domain"
)

// SubmitRegistration posts a completed registration draft as one multipart
// payload. Field names follow the backend contract, including the
// long-standing "registerationSuccessToken" spelling.
func (c *Client) SubmitRegistration(ctx context.Context, draft *domain.RegistrationDraft) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := []struct{ name, value string }{
		{"companyName", draft.CompanyName},
		{"country", draft.Country},
		{"city", draft.City},
		{"commercialLicenseNumber", draft.CommercialLicenseNumber},
		{"firstName", draft.FirstName},
		{"lastName", draft.LastName},
		{"jobTitle", draft.JobTitle},
		{"email", draft.Email},
		{"phoneNumber", draft.PhoneNumber},
		{"password", draft.Password},
		{"retryPassword", draft.RetryPassword},
		{"registerationSuccessToken", draft.OTPSuccessToken},
		{"type", strconv.Itoa(int(draft.Type))},
	}
	for _, f := range fields {
		if err := w.WriteField(f.name, f.value); err != nil {
			return fmt.Errorf("write field %s: %w", f.name, err)
		}
	}
	if draft.Website != "" {
		if err := w.WriteField("website", draft.Website); err != nil {
			return fmt.Errorf("write field website: %w", err)
		}
	}
	if err := writeFile(w, "commercialLicenseFile", draft.CommercialLicenseFile); err != nil {
		return err
	}
	if err := writeFile(w, "taxLicenseFile", draft.TaxLicenseFile); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/registration-requests", bytes.NewReader(buf.Bytes()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	io.Copy(io.Discard, resp.Body)
	return nil
}

func writeFile(w *multipart.Writer, field string, file *domain.FileAttachment) error {
	if file == nil {
		return nil
	}
	part, err := w.CreateFormFile(field, file.Name)
	if err != nil {
		return fmt.Errorf("create form file %s: %w", field, err)
	}
	if _, err := part.Write(file.Data); err != nil {
		return fmt.Errorf("write form file %s: %w", field, err)
	}
	return nil
}

// ListRegistrationRequests fetches one page of submitted registrations.
// Admin only.
func (c *Client) ListRegistrationRequests(ctx context.Context, page, pageSize int, filter domain.RegistrationRequestFilter) (*domain.Page[domain.RegistrationRequest], error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("pageSize", strconv.Itoa(pageSize))
	if filter.Status != nil {
		query.Set("status", strconv.Itoa(int(*filter.Status)))
	}
	if filter.Email != "" {
		query.Set("email", filter.Email)
	}
	if filter.CommercialLicenseNumber != "" {
		query.Set("commercialLicenseNumber", filter.CommercialLicenseNumber)
	}

	var out domain.Page[domain.RegistrationRequest]
	if err := c.do(ctx, http.MethodGet, "/registration-requests", query, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRegistrationRequest fetches one registration request. Admin only.
func (c *Client) GetRegistrationRequest(ctx context.Context, id string) (*domain.RegistrationRequest, error) {
	var out domain.RegistrationRequest
	if err := c.do(ctx, http.MethodGet, "/registration-requests/"+id, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ApproveRegistrationRequest approves a pending registration. Admin only.
func (c *Client) ApproveRegistrationRequest(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/registration-requests/"+id+"/approve", nil, nil, nil)
}

// DenyRegistrationRequest denies a pending registration. Admin only.
func (c *Client) DenyRegistrationRequest(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/registration-requests/"+id+"/deny", nil, nil, nil)
}

var _ domain.RegistrationGateway = (*Client)(nil)
var _ domain.RegistrationReview = (*Client)(nil)
