// Command danaam is the terminal client for the DANAAM marketplace. It keeps
// a persistent session on disk (or in Redis), transparently refreshing the
// access token, and exposes the registration wizard as an interactive flow.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"golang.org/x/term"

	"github.com/danaam/danaam-go/domain"
	"github.com/danaam/danaam-go/internal/api"
	"github.com/danaam/danaam-go/internal/config"
	"github.com/danaam/danaam-go/internal/otp"
	"github.com/danaam/danaam-go/internal/session"
	"github.com/danaam/danaam-go/internal/store"
	"github.com/danaam/danaam-go/internal/wizard"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal("config: %v", err)
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	app, err := newApp(cfg)
	if err != nil {
		fatal("%v", err)
	}

	ctx := context.Background()
	if err := app.run(ctx, args[0], args[1:]); err != nil {
		fatal("%v", err)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yml"
	}
	return filepath.Join(home, ".danaam", "config.yml")
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: danaam <command> [args]

commands:
  login <email>            log in as a marketplace user
  login-admin <email>      log in to the admin console
  logout                   discard the stored session
  whoami                   show the current session
  register                 run the interactive registration wizard
  reset-password <email>   reset a password via email OTP
  profile                  show your profile
  profile-update           update first name, last name or city
  users                    list users (admin)
  user-activate <id>       enable a user account (admin)
  user-deactivate <id>     disable a user account (admin)
  user-delete <id>         delete a user account (admin)
  regreqs                  list registration requests (admin)
  regreq <id>              show one registration request (admin)
  regreq-approve <id>      approve a registration request (admin)
  regreq-deny <id>         deny a registration request (admin)`)
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "danaam: "+format+"\n", args...)
	os.Exit(1)
}

type app struct {
	cfg     *config.Config
	client  *api.Client
	manager *session.Manager
}

func newApp(cfg *config.Config) (*app, error) {
	var tokens domain.TokenStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		tokens = store.NewRedisStore(rdb, cfg.RedisKey)
	} else {
		tokens = store.NewFileStore(cfg.CredentialsPath)
	}

	// The plain client handles login and refresh; the authed client routes
	// everything else through the refresh-and-replay transport.
	plain := api.New(cfg.BaseURL, api.WithTimeout(cfg.Timeout))
	manager := session.NewManager(tokens, plain)
	manager.OnSessionExpired(func() {
		fmt.Fprintln(os.Stderr, "session expired, please log in again")
	})
	authed := api.New(cfg.BaseURL, api.WithTimeout(cfg.Timeout), api.WithTokenSource(manager))

	return &app{cfg: cfg, client: authed, manager: manager}, nil
}

func (a *app) run(ctx context.Context, cmd string, args []string) error {
	a.manager.Initialize(ctx)

	switch cmd {
	case "login":
		return a.login(ctx, args, false)
	case "login-admin":
		return a.login(ctx, args, true)
	case "logout":
		a.manager.Logout(ctx, false)
		fmt.Println("logged out")
		return nil
	case "whoami":
		return a.whoami()
	case "register":
		return a.register(ctx)
	case "reset-password":
		return a.resetPassword(ctx, args)
	case "profile":
		return a.showProfile(ctx)
	case "profile-update":
		return a.updateProfile(ctx)
	case "users":
		return a.listUsers(ctx)
	case "user-activate":
		return a.userAction(ctx, args, a.client.ActivateUser)
	case "user-deactivate":
		return a.userAction(ctx, args, a.client.DeactivateUser)
	case "user-delete":
		return a.userAction(ctx, args, a.client.DeleteUser)
	case "regreqs":
		return a.listRegRequests(ctx)
	case "regreq":
		return a.showRegRequest(ctx, args)
	case "regreq-approve":
		return a.userAction(ctx, args, a.client.ApproveRegistrationRequest)
	case "regreq-deny":
		return a.userAction(ctx, args, a.client.DenyRegistrationRequest)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) login(ctx context.Context, args []string, admin bool) error {
	if len(args) != 1 {
		return errors.New("usage: login <email>")
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}

	var sess *domain.Session
	if admin {
		sess, err = a.manager.LoginAdmin(ctx, args[0], password, true)
	} else {
		sess, err = a.manager.Login(ctx, args[0], password, true)
	}
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return errors.New("email or password is incorrect")
		}
		return err
	}
	if sess.FirstName != "" {
		fmt.Printf("logged in as %s %s (%s)\n", sess.FirstName, sess.LastName, sess.Role)
	} else {
		fmt.Printf("logged in as %s (%s)\n", sess.UserID, sess.Role)
	}
	return nil
}

func (a *app) whoami() error {
	sess := a.manager.Current()
	if sess == nil {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("user id:  %s\nrole:     %s\nclass:    %s\n", sess.UserID, sess.Role, sess.UserClass)
	if sess.CompanyName != "" {
		fmt.Printf("company:  %s\n", sess.CompanyName)
	}
	if exp := tokenExpiry(sess.AccessToken); !exp.IsZero() {
		fmt.Printf("access token expires: %s\n", exp.Local().Format(time.RFC1123))
	}
	return nil
}

// tokenExpiry reads the exp claim without verifying the signature; the
// server remains the authority, this is display only.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

func (a *app) resetPassword(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: reset-password <email>")
	}
	email := args[0]

	state, err := a.client.SendOTP(ctx, email, domain.PurposePasswordReset)
	if err != nil {
		return err
	}
	challenge := otp.NewChallenge(a.client, email, domain.PurposePasswordReset, state)
	defer challenge.Close()

	successToken, err := driveChallenge(ctx, challenge)
	if err != nil {
		return err
	}

	newPassword, err := promptPassword("New password: ")
	if err != nil {
		return err
	}
	if err := a.client.ResetPassword(ctx, successToken, newPassword); err != nil {
		return err
	}
	fmt.Println("password updated, you can now log in")
	return nil
}

func (a *app) showProfile(ctx context.Context) error {
	p, err := a.client.GetProfile(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("%s %s <%s>\n", p.FirstName, p.LastName, p.Email)
	fmt.Printf("role: %s  class: %s  enabled: %v\n", p.Role, p.UserClass, p.Enabled)
	if p.CompanyName != "" {
		fmt.Printf("company: %s (%s, %s)\n", p.CompanyName, p.City, p.Country)
	}
	return nil
}

func (a *app) updateProfile(ctx context.Context) error {
	in := bufio.NewReader(os.Stdin)
	update := domain.ProfileUpdate{
		FirstName: promptLine(in, "First name (blank keeps current): "),
		LastName:  promptLine(in, "Last name (blank keeps current): "),
		City:      promptLine(in, "City (blank keeps current): "),
	}
	if err := a.client.UpdateProfile(ctx, update); err != nil {
		return err
	}
	fmt.Println("profile updated")
	return nil
}

func (a *app) listUsers(ctx context.Context) error {
	page, err := a.client.ListUsers(ctx, 1, 50, domain.UserFilter{})
	if err != nil {
		return err
	}
	for _, u := range page.Items {
		status := "enabled"
		if !u.Enabled {
			status = "disabled"
		}
		fmt.Printf("%s  %-30s %-12s %-12s %s\n", u.ID, u.Email, u.Role, u.UserClass, status)
	}
	fmt.Printf("%d of %d users\n", len(page.Items), page.TotalCount)
	return nil
}

func (a *app) userAction(ctx context.Context, args []string, fn func(context.Context, string) error) error {
	if len(args) != 1 {
		return errors.New("expected exactly one id argument")
	}
	if err := fn(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("done")
	return nil
}

func (a *app) listRegRequests(ctx context.Context) error {
	page, err := a.client.ListRegistrationRequests(ctx, 1, 50, domain.RegistrationRequestFilter{})
	if err != nil {
		return err
	}
	for _, r := range page.Items {
		fmt.Printf("%s  %-30s %-25s %-10s %s\n", r.ID, r.Email, r.CompanyName, r.Type, r.CurrentStatus)
	}
	fmt.Printf("%d of %d requests\n", len(page.Items), page.TotalCount)
	return nil
}

func (a *app) showRegRequest(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("usage: regreq <id>")
	}
	r, err := a.client.GetRegistrationRequest(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("id:       %s\nstatus:   %s\ntype:     %s\n", r.ID, r.CurrentStatus, r.Type)
	fmt.Printf("company:  %s (%s, %s)\nlicense:  %s\n", r.CompanyName, r.City, r.Country, r.CommercialLicenseNumber)
	fmt.Printf("contact:  %s %s, %s <%s> %s\n", r.FirstName, r.LastName, r.JobTitle, r.Email, r.PhoneNumber)
	return nil
}

// register drives the four-step wizard interactively.
func (a *app) register(ctx context.Context) error {
	in := bufio.NewReader(os.Stdin)
	w := wizard.New(a.client, a.client)

	fmt.Println("Registering a new company. [1] Contractor  [2] Supplier")
	regType := domain.TypeContractor
	if promptLine(in, "Type: ") == "2" {
		regType = domain.TypeSupplier
	}
	if err := w.ChooseType(regType); err != nil {
		return err
	}

	for w.Step() != wizard.StepSubmitted {
		switch w.Step() {
		case wizard.StepCompanyInfo:
			info := wizard.CompanyInfo{
				CompanyName:             promptLine(in, "Company name: "),
				Country:                 promptLine(in, "Country: "),
				City:                    promptLine(in, "City: "),
				CommercialLicenseNumber: promptLine(in, "Commercial license number: "),
				Website:                 promptLine(in, "Website (optional): "),
			}
			var err error
			info.CommercialLicenseFile, err = loadAttachment(promptLine(in, "Commercial license file path: "))
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			if taxPath := promptLine(in, "Tax license file path (optional): "); taxPath != "" {
				info.TaxLicenseFile, err = loadAttachment(taxPath)
				if err != nil {
					fmt.Fprintln(os.Stderr, err)
					continue
				}
			}
			w.SetCompanyInfo(info)

		case wizard.StepContactInfo:
			w.SetContactInfo(wizard.ContactInfo{
				FirstName:   promptLine(in, "First name: "),
				LastName:    promptLine(in, "Last name: "),
				JobTitle:    promptLine(in, "Job title: "),
				Email:       promptLine(in, "Email: "),
				PhoneNumber: promptLine(in, "Phone number: "),
			})

		case wizard.StepCredentials:
			password, err := promptPassword("Password: ")
			if err != nil {
				return err
			}
			retry, err := promptPassword("Repeat password: ")
			if err != nil {
				return err
			}
			w.SetCredentials(password, retry)

		case wizard.StepReview:
			draft := w.Draft()
			fmt.Printf("Submitting %s (%s) for %s %s <%s>\n",
				draft.CompanyName, draft.Type, draft.FirstName, draft.LastName, draft.Email)
			if err := w.Submit(ctx); err != nil {
				printWizardErrors(w)
				return err
			}
			continue
		}

		challenge, err := w.Next(ctx)
		if err != nil {
			printWizardErrors(w)
			if errors.Is(err, domain.ErrWizardValidation) {
				continue
			}
			return err
		}
		if challenge != nil {
			successToken, err := driveChallenge(ctx, challenge)
			if err != nil {
				w.AbandonOTP()
				return err
			}
			if err := w.CompleteOTP(successToken); err != nil {
				return err
			}
		}
	}

	fmt.Println("registration submitted; you will be notified once it is reviewed")
	return nil
}

// driveChallenge runs the verify/resend loop until a success token is minted
// or the attempt budget runs out.
func driveChallenge(ctx context.Context, challenge *otp.Challenge) (string, error) {
	in := bufio.NewReader(os.Stdin)
	fmt.Printf("A verification code was sent to %s.\n", challenge.Email())

	for {
		code := promptLine(in, "Code (or 'resend'): ")
		if code == "resend" {
			if err := challenge.Resend(ctx); err != nil {
				switch {
				case errors.Is(err, domain.ErrOTPResendThrottled):
					fmt.Printf("please wait %d seconds before resending\n", challenge.ResendCountdown())
				case errors.Is(err, domain.ErrOTPResendLimit):
					fmt.Println("no resends left")
				default:
					return "", err
				}
				continue
			}
			fmt.Println("a new code was sent")
			continue
		}

		token, err := challenge.Verify(ctx, code)
		if err == nil {
			return token, nil
		}
		switch {
		case errors.Is(err, domain.ErrOTPInvalidFormat):
			fmt.Println("the code must be exactly 6 digits")
		case errors.Is(err, domain.ErrOTPInvalid):
			fmt.Printf("incorrect code, %d attempts left\n", challenge.AttemptsLeft())
		case errors.Is(err, domain.ErrOTPMaxAttempts):
			return "", errors.New("too many incorrect codes, start over")
		case errors.Is(err, domain.ErrOTPExpired):
			return "", errors.New("the code expired, start over")
		default:
			return "", err
		}
	}
}

func printWizardErrors(w *wizard.Wizard) {
	for field, msg := range w.Errors() {
		step, _ := w.ErrorStep(field)
		fmt.Fprintf(os.Stderr, "  %s (%s): %s\n", field, step, msg)
	}
}

func promptLine(in *bufio.Reader, prompt string) string {
	fmt.Print(prompt)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func loadAttachment(path string) (*domain.FileAttachment, error) {
	if path == "" {
		return nil, errors.New("a file path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	return &domain.FileAttachment{
		Name:        filepath.Base(path),
		ContentType: contentTypeFor(path),
		Data:        data,
	}, nil
}

func contentTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	}
	return "application/octet-stream"
}
