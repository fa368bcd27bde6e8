package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/evanschultz/acta/internal/apiclient"
	"github.com/evanschultz/acta/internal/app"
	"github.com/evanschultz/acta/internal/auth"
	"github.com/evanschultz/acta/internal/contact"
	"github.com/spf13/cobra"
)

// runForm runs a huh form on the command's IO. Without a terminal it reports the missing flags instead.
func (c *cli) runForm(ctx context.Context, form *huh.Form, missing map[string]string) error {
	err := requireFlags(missing)
	if err == nil {
		return nil
	}
	if !c.interactive {
		return err
	}
	if err := form.WithInput(c.stdin).WithOutput(c.stderr).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errors.New("cancelled")
		}
		return fmt.Errorf("run form: %w", err)
	}
	return nil
}

func notBlank(label string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", label)
		}
		return nil
	}
}

func (c *cli) signInCommand() *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "signin",
		Short: "Sign in and store a demo token pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			form := huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Email").Value(&email).Validate(notBlank("email")),
				huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password).Validate(notBlank("password")),
			))
			if err := c.runForm(ctx, form, map[string]string{"email": email, "password": password}); err != nil {
				return err
			}
			return c.withSession(ctx, "signin", func(s *session) error {
				sim, err := s.simulator(c.authDelay)
				if err != nil {
					return err
				}
				result, err := sim.SignIn(ctx, email, password)
				if err != nil {
					return fmt.Errorf("%s: %w", auth.Message(err), err)
				}
				c.printf("%s\n%s\n", result.Title, result.Description)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().StringVar(&password, "password", "", "account password")
	return cmd
}

func (c *cli) registerCommand() *cobra.Command {
	var (
		in       auth.RegisterInput
		agreeSet bool
	)
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a demo account and sign in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			agreeSet = cmd.Flags().Changed("agree")
			form := huh.NewForm(
				huh.NewGroup(
					huh.NewInput().Title("Name").Value(&in.Name).Validate(notBlank("name")),
					huh.NewInput().Title("Email").Value(&in.Email).Validate(notBlank("email")),
					huh.NewInput().
						Title("Password").
						Description(passwordHint()).
						EchoMode(huh.EchoModePassword).
						Value(&in.Password).
						Validate(validatePasswordField),
				),
				huh.NewGroup(
					huh.NewConfirm().
						Title("Agree to the terms and conditions?").
						Affirmative("I agree").
						Negative("No").
						Value(&in.AgreeToTerms),
				),
			)
			missing := map[string]string{"name": in.Name, "email": in.Email, "password": in.Password}
			if !agreeSet {
				missing["agree"] = ""
			}
			if err := c.runForm(ctx, form, missing); err != nil {
				return err
			}
			return c.withSession(ctx, "register", func(s *session) error {
				sim, err := s.simulator(c.authDelay)
				if err != nil {
					return err
				}
				result, err := sim.Register(ctx, in)
				if err != nil {
					if errors.Is(err, auth.ErrWeakPassword) {
						c.printPasswordRules(in.Password)
					}
					return fmt.Errorf("%s: %w", auth.Message(err), err)
				}
				c.printf("%s\n%s\n", result.Title, result.Description)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&in.Email, "email", "", "account email")
	cmd.Flags().StringVar(&in.Password, "password", "", "account password")
	cmd.Flags().BoolVar(&in.AgreeToTerms, "agree", false, "agree to the terms and conditions")
	return cmd
}

func passwordHint() string {
	labels := make([]string, 0, 4)
	for _, rule := range auth.PasswordRules() {
		labels = append(labels, rule.Label)
	}
	return strings.Join(labels, ", ")
}

func validatePasswordField(password string) error {
	unmet := auth.CheckPassword(password)
	if len(unmet) == 0 {
		return nil
	}
	return fmt.Errorf("missing: %s", strings.ToLower(unmet[0].Label))
}

// printPasswordRules prints the requirement checklist with met rules ticked.
func (c *cli) printPasswordRules(password string) {
	unmet := map[string]bool{}
	for _, rule := range auth.CheckPassword(password) {
		unmet[rule.ID] = true
	}
	for _, rule := range auth.PasswordRules() {
		mark := "✓"
		if unmet[rule.ID] {
			mark = "✗"
		}
		c.printf("  %s %s\n", mark, rule.Label)
	}
}

func (c *cli) signOutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "signout",
		Short: "Clear the stored token pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), "signout", func(s *session) error {
				sim, err := s.simulator(0)
				if err != nil {
					return err
				}
				if err := sim.SignOut(cmd.Context()); err != nil {
					return err
				}
				c.printf("Signed out.\n")
				return nil
			})
		},
	}
}

func (c *cli) whoAmICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Print the signed-in email from the stored access token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), "whoami", func(s *session) error {
				sim, err := s.simulator(0)
				if err != nil {
					return err
				}
				email, ok, err := sim.CurrentUser(cmd.Context())
				if err != nil {
					return err
				}
				if !ok {
					c.printf("Not signed in.\n")
					return nil
				}
				c.printf("%s\n", email)
				return nil
			})
		},
	}
}

func (c *cli) profileCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profile",
		Short: "Fetch the signed-in profile from the backend API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), "profile", func(s *session) error {
				client, err := s.apiClient(c)
				if err != nil {
					return err
				}
				var profile map[string]any
				if err := client.Get(cmd.Context(), apiclient.EndpointProfile, &profile); err != nil {
					if errors.Is(err, apiclient.ErrUnauthorized) {
						return fmt.Errorf("not signed in to %s: %w", client.BaseURL(), err)
					}
					return err
				}
				encoded, err := json.MarshalIndent(profile, "", "  ")
				if err != nil {
					return fmt.Errorf("encode profile: %w", err)
				}
				c.printf("%s\n", encoded)
				return nil
			})
		},
	}
}

func (c *cli) contactCommand() *cobra.Command {
	var f contact.Form
	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message through the configured email service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			form := huh.NewForm(huh.NewGroup(
				huh.NewInput().Title("Name").Value(&f.Name),
				huh.NewInput().Title("Email").Value(&f.Email),
				huh.NewInput().Title("Subject").Value(&f.Subject),
				huh.NewText().Title("Message").Value(&f.Message),
			).Title("Contact us"))
			missing := map[string]string{"name": f.Name, "email": f.Email, "subject": f.Subject, "message": f.Message}
			if err := c.runForm(ctx, form, missing); err != nil {
				return err
			}
			return c.withSession(ctx, "contact", func(s *session) error {
				result, err := contact.Submit(ctx, s.mailer(c), f)
				var fieldErrs app.FieldErrors
				switch {
				case errors.As(err, &fieldErrs):
					for _, field := range []string{contact.FieldName, contact.FieldEmail, contact.FieldSubject, contact.FieldMessage} {
						if msg := fieldErrs.Field(field); msg != "" {
							c.printf("  %s: %s\n", field, msg)
						}
					}
					return err
				case err != nil:
					return fmt.Errorf("failed to send message: %s", contact.FailureDescription(err))
				}
				c.printf("%s\n%s\n", result.Title, result.Description)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&f.Name, "name", "", "your name")
	cmd.Flags().StringVar(&f.Email, "email", "", "your email")
	cmd.Flags().StringVar(&f.Subject, "subject", "", "message subject")
	cmd.Flags().StringVar(&f.Message, "message", "", "message body")
	return cmd
}

func (c *cli) emailStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "email-status",
		Short: "Report which email service settings are present",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withSession(cmd.Context(), "email-status", func(s *session) error {
				encoded, err := json.MarshalIndent(s.mailer(c).Status(), "", "  ")
				if err != nil {
					return fmt.Errorf("encode email status: %w", err)
				}
				c.printf("%s\n", encoded)
				return nil
			})
		},
	}
}
