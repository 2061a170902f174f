package handler

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xxxsen/hmobot/internal/model"
	appErr "github.com/xxxsen/hmobot/internal/pkg/errors"
	"github.com/xxxsen/hmobot/internal/pkg/response"
	"github.com/xxxsen/hmobot/internal/service"
)

type TurnRunner interface {
	Turn(ctx context.Context, req service.TurnRequest) (*service.TurnResponse, error)
}

type ChatHandler struct {
	chats TurnRunner
}

func NewChatHandler(chats TurnRunner) *ChatHandler {
	return &ChatHandler{chats: chats}
}

type chatRequest struct {
	Phase    string          `json:"phase"`
	UserInfo *model.Profile  `json:"user_info"`
	History  []model.Message `json:"history"`
	Message  string          `json:"message"`
}

type chatResponse struct {
	Reply            string          `json:"reply"`
	History          []model.Message `json:"history"`
	UserInfo         *model.Profile  `json:"user_info,omitempty"`
	FullInfo         bool            `json:"full_info"`
	Phase            model.Phase     `json:"phase"`
	ValidationErrors []string        `json:"validation_errors,omitempty"`
}

func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleError(c, fmt.Errorf("%w: %v", appErr.ErrInvalid, err))
		return
	}
	turn, err := req.toTurn()
	if err != nil {
		handleError(c, err)
		return
	}
	resp, err := h.chats.Turn(c.Request.Context(), turn)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, chatResponse{
		Reply:            resp.Reply,
		History:          resp.History,
		UserInfo:         resp.Profile,
		FullInfo:         resp.FullInfo,
		Phase:            resp.Phase,
		ValidationErrors: resp.ValidationErrors,
	})
}

func (r chatRequest) toTurn() (service.TurnRequest, error) {
	phase, err := model.ParsePhase(r.Phase)
	if err != nil {
		return service.TurnRequest{}, fmt.Errorf("%w: %v", service.ErrInvalidPhase, err)
	}
	if strings.TrimSpace(r.Message) == "" {
		return service.TurnRequest{}, fmt.Errorf("%w: message is required", appErr.ErrInvalid)
	}
	for i, m := range r.History {
		switch m.Role {
		case model.RoleSystem, model.RoleUser, model.RoleAssistant:
		default:
			return service.TurnRequest{}, fmt.Errorf("%w: history[%d] has unknown role %q", appErr.ErrInvalid, i, m.Role)
		}
	}
	return service.TurnRequest{
		Phase:   phase,
		Profile: r.UserInfo,
		History: r.History,
		Message: r.Message,
	}, nil
}
