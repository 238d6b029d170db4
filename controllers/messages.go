package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/meinhoongagan/homeservice/services"
)

type MessageController struct {
	messaging *services.MessagingService
}

func NewMessageController(messaging *services.MessagingService) *MessageController {
	return &MessageController{messaging: messaging}
}

func (h *MessageController) Inbox(c *fiber.Ctx) error {
	p, err := Caller(c)
	if err != nil {
		return err
	}
	inbox, err := h.messaging.Inbox(c.UserContext(), p.UserID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"conversations": inbox})
}

// Conversation shows a booking's thread and marks the other party's messages read.
func (h *MessageController) Conversation(c *fiber.Ctx) error {
	p, err := Caller(c)
	if err != nil {
		return err
	}
	bookingID, err := ParamID(c, "bookingID")
	if err != nil {
		return err
	}
	conv, err := h.messaging.Conversation(c.UserContext(), p.UserID, bookingID)
	if err != nil {
		return err
	}
	return c.JSON(conv)
}

type postMessageRequest struct {
	Content string `json:"content" form:"content"`
}

func (h *MessageController) Post(c *fiber.Ctx) error {
	p, err := Caller(c)
	if err != nil {
		return err
	}
	bookingID, err := ParamID(c, "bookingID")
	if err != nil {
		return err
	}
	var req postMessageRequest
	if err := ParseBody(c, &req); err != nil {
		return err
	}
	msg, err := h.messaging.Post(c.UserContext(), p.UserID, bookingID, req.Content)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(msg)
}
