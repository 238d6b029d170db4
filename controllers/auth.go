package controllers

import (
	"io"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/homeservice/models"
	"github.com/meinhoongagan/homeservice/services"
)

type AuthController struct {
	auth     *services.AuthService
	profiles *services.ProfileService
}

func NewAuthController(auth *services.AuthService, profiles *services.ProfileService) *AuthController {
	return &AuthController{auth: auth, profiles: profiles}
}

// Register handles customer sign-up.
func (h *AuthController) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := ParseBody(c, &in); err != nil {
		return err
	}
	in.Categories = nil
	reg, err := h.auth.RegisterCustomer(c.UserContext(), in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(registrationResponse(reg))
}

// RegisterProvider handles multipart provider sign-up with one certificate
// per selected category.
func (h *AuthController) RegisterProvider(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "expected a multipart form")
	}

	in := services.RegisterInput{
		FullName:        formValue(form, "full_name"),
		Email:           formValue(form, "email"),
		Phone:           formValue(form, "phone"),
		Password:        formValue(form, "password"),
		ConfirmPassword: formValue(form, "confirm_password"),
		Experience:      formValue(form, "experience"),
	}
	for _, v := range form.Value["service_categories"] {
		for _, cat := range strings.Split(v, ",") {
			if cat = strings.TrimSpace(cat); cat != "" {
				in.Categories = append(in.Categories, models.Category(cat))
			}
		}
	}

	certs, closeAll, err := openCertificates(form.File["certificates"])
	defer closeAll()
	if err != nil {
		return err
	}

	reg, err := h.auth.RegisterProvider(c.UserContext(), in, certs)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(registrationResponse(reg))
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

func openCertificates(headers []*multipart.FileHeader) ([]services.CertificateFile, func(), error) {
	var opened []io.Closer
	closeAll := func() {
		for _, f := range opened {
			f.Close()
		}
	}

	certs := make([]services.CertificateFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, closeAll, fiber.NewError(fiber.StatusBadRequest, "cannot read "+fh.Filename)
		}
		opened = append(opened, f)
		certs = append(certs, services.CertificateFile{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
			Body:        f,
		})
	}
	return certs, closeAll, nil
}

func registrationResponse(reg *services.Registration) fiber.Map {
	resp := fiber.Map{
		"message":    "registration successful, check your email for the verification code",
		"user":       reg.User,
		"profile":    reg.Profile,
		"ticket_id":  reg.TicketID,
		"expires_at": reg.ExpiresAt,
		"email_sent": reg.EmailSent,
	}
	if !reg.EmailSent {
		resp["message"] = "registration successful, but the verification email could not be sent"
		resp["verification_code"] = reg.VerificationCode
	}
	return resp
}

type verifyRequest struct {
	TicketID string `json:"ticket_id" form:"ticket_id"`
	Code     string `json:"code" form:"code"`
}

func (h *AuthController) VerifyEmail(c *fiber.Ctx) error {
	var req verifyRequest
	if err := ParseBody(c, &req); err != nil {
		return err
	}
	profile, err := h.auth.VerifyEmail(c.UserContext(), strings.TrimSpace(req.TicketID), strings.TrimSpace(req.Code))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"message": "email verified",
		"profile": profile,
	})
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

func (h *AuthController) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := ParseBody(c, &req); err != nil {
		return err
	}
	res, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

func (h *AuthController) Logout(c *fiber.Ctx) error {
	p, err := Caller(c)
	if err != nil {
		return err
	}
	if err := h.auth.Logout(c.UserContext(), p.TokenID, p.ExpiresAt); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "logged out"})
}

// Me returns the caller's user and profile.
func (h *AuthController) Me(c *fiber.Ctx) error {
	p, err := Caller(c)
	if err != nil {
		return err
	}
	profile, err := h.profiles.Get(c.UserContext(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(profile)
}

func (h *AuthController) SaveLocation(c *fiber.Ctx) error {
	p, err := Caller(c)
	if err != nil {
		return err
	}
	var in services.LocationInput
	if err := ParseBody(c, &in); err != nil {
		return err
	}
	profile, err := h.profiles.SaveLocation(c.UserContext(), p.UserID, in)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "location saved", "profile": profile})
}
