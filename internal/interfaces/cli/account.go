package cli

import (
	"context"

	"github.com/riskibarqy/prediction-league/internal/domain/account"
)

func (u *UI) loginPage(ctx context.Context) error {
	email, ok := u.prompt("Email ('f' forgot password, 'a' resend activation): ")
	if !ok {
		return nil
	}
	switch email {
	case "f":
		return u.forgotPassword(ctx)
	case "a":
		return u.resendActivation(ctx)
	case "":
		return nil
	}

	password, ok := u.prompt("Password: ")
	if !ok {
		return nil
	}

	if err := u.auth.Login(ctx, email, password); err != nil {
		return err
	}
	u.printf("Logged in.\n")
	return nil
}

func (u *UI) forgotPassword(ctx context.Context) error {
	email, ok := u.prompt("Account email: ")
	if !ok || email == "" {
		return nil
	}
	if err := u.auth.RequestPasswordReset(ctx, email); err != nil {
		return err
	}
	u.printf("Reset email sent. Enter the token from it to set a new password.\n")

	token, ok := u.prompt("Reset token (empty to finish later): ")
	if !ok || token == "" {
		return nil
	}
	newPassword, ok := u.prompt("New password: ")
	if !ok {
		return nil
	}
	newPassword1, ok := u.prompt("Repeat new password: ")
	if !ok {
		return nil
	}
	if err := u.auth.ConfirmPasswordReset(ctx, token, newPassword, newPassword1); err != nil {
		return err
	}
	u.printf("Password reset. You can log in now.\n")
	return nil
}

func (u *UI) resendActivation(ctx context.Context) error {
	email, ok := u.prompt("Account email: ")
	if !ok || email == "" {
		return nil
	}
	if err := u.auth.ResendActivation(ctx, email); err != nil {
		return err
	}
	u.printf("Activation email sent.\n")
	return nil
}

func (u *UI) registerPage(ctx context.Context) error {
	email, ok := u.prompt("Email: ")
	if !ok {
		return nil
	}
	password, ok := u.prompt("Password (min 8 characters): ")
	if !ok {
		return nil
	}
	password1, ok := u.prompt("Repeat password: ")
	if !ok {
		return nil
	}

	if err := u.auth.Register(ctx, email, password, password1); err != nil {
		return err
	}
	u.printf("Registered. Check your email for the activation link, then use the token below.\n")

	token, ok := u.prompt("Activation token (empty to activate later): ")
	if !ok || token == "" {
		return nil
	}
	if err := u.auth.Activate(ctx, token); err != nil {
		return err
	}
	u.printf("Account activated. You can log in now.\n")
	return nil
}

func (u *UI) logoutAction(ctx context.Context) error {
	if err := u.auth.Logout(ctx); err != nil {
		return err
	}
	u.printf("Logged out.\n")
	return nil
}

func (u *UI) profilePage(ctx context.Context) error {
	profile, err := u.profile.Load(ctx)
	if err != nil {
		return err
	}

	u.printf("\nProfile:\n")
	u.printf("  Email:       %s\n", profile.Email)
	u.printf("  Name:        %s\n", profile.DisplayName())
	u.printf("  Description: %s\n", profile.Description)

	choice, ok := u.prompt("e) Edit profile  p) Change password  empty to go back: ")
	if !ok {
		return nil
	}
	switch choice {
	case "e":
		return u.editProfile(ctx)
	case "p":
		return u.changePassword(ctx)
	default:
		return nil
	}
}

func (u *UI) editProfile(ctx context.Context) error {
	u.printf("Leave a field empty to keep its current value.\n")
	firstName, ok := u.prompt("First name: ")
	if !ok {
		return nil
	}
	lastName, ok := u.prompt("Last name: ")
	if !ok {
		return nil
	}
	description, ok := u.prompt("Description: ")
	if !ok {
		return nil
	}
	imagePath, ok := u.prompt("Avatar file path: ")
	if !ok {
		return nil
	}

	updated, err := u.profile.Update(ctx, account.ProfileUpdate{
		FirstName:   firstName,
		LastName:    lastName,
		Description: description,
		ImagePath:   imagePath,
	})
	if err != nil {
		return err
	}
	u.printf("Profile updated: %s\n", updated.DisplayName())
	return nil
}

func (u *UI) changePassword(ctx context.Context) error {
	oldPassword, ok := u.prompt("Current password: ")
	if !ok {
		return nil
	}
	newPassword, ok := u.prompt("New password: ")
	if !ok {
		return nil
	}
	newPassword1, ok := u.prompt("Repeat new password: ")
	if !ok {
		return nil
	}

	if err := u.auth.ChangePassword(ctx, oldPassword, newPassword, newPassword1); err != nil {
		return err
	}
	u.printf("Password changed.\n")
	return nil
}
