package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/hmobot/internal/ai"
	"github.com/xxxsen/hmobot/internal/lang"
	"github.com/xxxsen/hmobot/internal/model"
	"github.com/xxxsen/hmobot/internal/profile"
)

const (
	DefaultTopK = 3

	knowledgeBaseHeader = "Knowledge Base:\n"
)

var (
	ErrInvalidPhase    = errors.New("phase must be collecting or answering")
	ErrProfileRequired = errors.New("incomplete or invalid profile for answering phase")
	ErrAIUnavailable   = ai.ErrUnavailable
)

type ProfileExtractor interface {
	Extract(ctx context.Context, history []model.Message, message string) (model.Profile, error)
}

type Searcher interface {
	Search(ctx context.Context, allowed []model.HMO, query string, k int) ([]string, error)
}

type TurnRequest struct {
	Phase   model.Phase
	Profile *model.Profile
	History []model.Message
	Message string
}

type TurnResponse struct {
	Reply    string
	History  []model.Message
	FullInfo bool
	// Profile is set only when FullInfo is true.
	Profile *model.Profile
	Phase   model.Phase
	// ValidationErrors lists what is still missing or invalid, in the
	// conversation language.
	ValidationErrors []string
}

// ChatService runs one conversation turn at a time. It keeps no state
// between turns, so a single instance serves concurrent requests.
type ChatService struct {
	chatter   ai.IChatter
	extractor ProfileExtractor
	searcher  Searcher
	topK      int
}

func NewChatService(chatter ai.IChatter, extractor ProfileExtractor, searcher Searcher, topK int) *ChatService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &ChatService{
		chatter:   chatter,
		extractor: extractor,
		searcher:  searcher,
		topK:      topK,
	}
}

func (s *ChatService) Turn(ctx context.Context, req TurnRequest) (*TurnResponse, error) {
	phase := req.Phase
	if phase != model.PhaseCollecting && phase != model.PhaseAnswering {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidPhase, phase)
	}
	logger := logutil.GetLogger(ctx).With(zap.String("phase", string(phase)))
	language := lang.Detect(req.Message, req.History)

	current := model.Profile{}
	if req.Profile != nil {
		current = *req.Profile
	}
	if phase == model.PhaseCollecting {
		fragment, err := s.extractor.Extract(ctx, req.History, req.Message)
		switch {
		case errors.Is(err, profile.ErrUnparsable):
			logger.Warn("profile extraction unusable, keeping previous profile", zap.Error(err))
		case err != nil:
			logger.Error("profile extraction failed", zap.Error(err))
			return nil, err
		default:
			current = current.Merge(fragment)
		}
	}

	ok, problems := profile.Validate(current, language)
	if phase == model.PhaseCollecting && ok {
		logger.Info("profile complete, switching to answering phase")
		phase = model.PhaseAnswering
	}
	if phase == model.PhaseAnswering && !ok {
		return nil, fmt.Errorf("%w: %s", ErrProfileRequired, strings.Join(problems, "; "))
	}

	msgs := make([]model.Message, 0, len(req.History)+4)
	msgs = append(msgs, model.SystemMessage(systemPrompt(phase, language)))
	msgs = append(msgs, req.History...)
	msgs = append(msgs, model.UserMessage(req.Message))
	if phase == model.PhaseAnswering {
		kb, err := s.knowledgeContext(ctx, current, req.History, req.Message)
		if err != nil {
			logger.Error("knowledge base search failed", zap.Error(err))
			return nil, err
		}
		msgs = insertAt(msgs, 1, model.SystemMessage(profile.Summary(current)))
		msgs = insertAt(msgs, 2, model.SystemMessage(knowledgeBaseHeader+kb))
	}

	reply, err := s.chatter.Chat(ctx, msgs)
	if err != nil {
		logger.Error("chat completion failed", zap.Error(err))
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	history := make([]model.Message, 0, len(req.History)+2)
	history = append(history, req.History...)
	history = append(history, model.UserMessage(req.Message), model.AssistantMessage(reply))

	resp := &TurnResponse{
		Reply:    reply,
		History:  history,
		FullInfo: ok,
		Phase:    phase,
	}
	if ok {
		complete := current
		resp.Profile = &complete
	} else {
		resp.ValidationErrors = problems
	}
	logger.Info("turn completed",
		zap.String("lang", string(language)),
		zap.Bool("full_info", ok),
		zap.Int("history", len(history)),
	)
	return resp, nil
}

// knowledgeContext searches the providers named in the message plus the
// member's own provider. The query is the last two history messages,
// whatever their role, followed by the new message.
func (s *ChatService) knowledgeContext(ctx context.Context, p model.Profile, history []model.Message, message string) (string, error) {
	allowed := model.MentionedHMOs(message)
	if own, ok := p.Provider(); ok && !containsHMO(allowed, own) {
		allowed = append(allowed, own)
	}
	query := message
	if n := len(history); n >= 2 {
		query = history[n-2].Content + "\n" + history[n-1].Content + "\n" + message
	}
	snippets, err := s.searcher.Search(ctx, allowed, query, s.topK)
	if err != nil {
		return "", fmt.Errorf("search knowledge base: %w", err)
	}
	logutil.GetLogger(ctx).Debug("knowledge context built",
		zap.Int("providers", len(allowed)),
		zap.Int("snippets", len(snippets)),
	)
	return strings.Join(snippets, "\n\n"), nil
}

func containsHMO(list []model.HMO, h model.HMO) bool {
	for _, x := range list {
		if x == h {
			return true
		}
	}
	return false
}

func insertAt(msgs []model.Message, i int, m model.Message) []model.Message {
	msgs = append(msgs, model.Message{})
	copy(msgs[i+1:], msgs[i:])
	msgs[i] = m
	return msgs
}
