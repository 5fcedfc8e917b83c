package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	app_errors "ai-terminal/internal/errors"
	"ai-terminal/internal/llm"
	mock_llm "ai-terminal/internal/llm/mocks"
	"ai-terminal/internal/model"
	"ai-terminal/internal/service"
)

func setupTerminal(t *testing.T, streamer llm.ChatStreamer) *service.Terminal {
	t.Helper()
	ctx := context.Background()
	store := newSQLiteStore(t, t.TempDir())

	sessions := service.NewSessionStore(store, 0)
	settings := service.NewSettingsService(store, service.NewModelService())
	term := service.NewTerminal(sessions, settings, streamer)
	require.NoError(t, term.Open(ctx))
	t.Cleanup(func() { _ = term.Close(ctx) })
	return term
}

func submitAndWait(t *testing.T, term *service.Terminal, text string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, term.Submit(ctx, text))
	require.NoError(t, term.Wait(ctx))
}

func TestTerminal_Submit_FirstSubmissionCreatesSession(t *testing.T) {
	streamer := mock_llm.NewMockChatStreamer(t)
	term := setupTerminal(t, streamer)

	streamer.On("Stream", mock.Anything, mock.MatchedBy(func(req *model.ChatRequest) bool {
		return len(req.Messages) == 1 && req.Messages[0].Content == "The quick brown fox jumps over"
	}), mock.Anything).
		Run(replies(model.StreamResponse{Content: "ok"}, model.StreamResponse{Done: true})).
		Return(nil).Once()

	_, ok := term.ActiveSession()
	require.False(t, ok)

	submitAndWait(t, term, "The quick brown fox jumps over")

	session, ok := term.ActiveSession()
	require.True(t, ok)
	assert.Equal(t, "The quick brown fox jumps...", session.Title)
	require.Len(t, session.Messages, 2)
	assert.Equal(t, model.RoleUser, session.Messages[0].Role)
	assert.Equal(t, model.Message{ID: session.Messages[1].ID, Role: model.RoleAssistant, Content: "ok"}, session.Messages[1])
	assert.Len(t, term.Sessions(), 1)
}

func TestTerminal_SuccessfulSubmissionsAlternate(t *testing.T) {
	streamer := mock_llm.NewMockChatStreamer(t)
	term := setupTerminal(t, streamer)

	const turns = 4
	for i := 0; i < turns; i++ {
		streamer.On("Stream", mock.Anything, mock.MatchedBy(func(req *model.ChatRequest) bool {
			return len(req.Messages) == 2*i+1
		}), mock.Anything).
			Run(replies(model.StreamResponse{Content: fmt.Sprintf("answer %d", i)}, model.StreamResponse{Done: true})).
			Return(nil).Once()

		submitAndWait(t, term, fmt.Sprintf("question %d", i))
	}

	session, ok := term.ActiveSession()
	require.True(t, ok)
	require.Len(t, session.Messages, 2*turns)
	for i, m := range session.Messages {
		if i%2 == 0 {
			assert.Equal(t, model.RoleUser, m.Role)
			assert.Equal(t, fmt.Sprintf("question %d", i/2), m.Content)
		} else {
			assert.Equal(t, model.RoleAssistant, m.Role)
			assert.Equal(t, fmt.Sprintf("answer %d", i/2), m.Content)
		}
	}
}

func TestTerminal_FailedStreamKeepsUserMessage(t *testing.T) {
	streamer := mock_llm.NewMockChatStreamer(t)
	term := setupTerminal(t, streamer)

	streamer.On("Stream", mock.Anything, mock.Anything, mock.Anything).
		Run(replies(model.StreamResponse{Content: "half an ans"}, model.StreamResponse{Error: "Invalid API key provided", Status: 400})).
		Return(nil).Once()

	submitAndWait(t, term, "hello")

	session, ok := term.ActiveSession()
	require.True(t, ok)
	require.Len(t, session.Messages, 1)
	assert.Equal(t, "hello", session.Messages[0].Content)

	chatErr := term.Error()
	require.NotNil(t, chatErr)
	assert.Equal(t, app_errors.KindInvalidAPIKey, chatErr.Kind)
	assert.Equal(t, service.StateIdle, term.State())

	term.NewSession()
	assert.Nil(t, term.Error(), "a new session clears the banner")
}

func TestTerminal_Submit_RejectedWhileStreaming(t *testing.T) {
	streamer := mock_llm.NewMockChatStreamer(t)
	term := setupTerminal(t, streamer)

	release := make(chan struct{})
	streamer.On("Stream", mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			ch := args.Get(2).(chan<- model.StreamResponse)
			ch <- model.StreamResponse{Content: "thinking"}
			<-release
			ch <- model.StreamResponse{Done: true}
			close(ch)
		}).
		Return(nil).Once()

	streaming := make(chan struct{}, 1)
	term.Subscribe(func(ev service.Event) {
		if ev.State == service.StateStreaming {
			select {
			case streaming <- struct{}{}:
			default:
			}
		}
	})

	ctx := context.Background()
	require.NoError(t, term.Submit(ctx, "first"))
	<-streaming

	msg, ok := term.Streaming()
	require.True(t, ok)
	assert.Equal(t, "thinking", msg.Content)
	assert.True(t, msg.Streaming)

	before, _ := term.ActiveSession()
	err := term.Submit(ctx, "second")
	assert.ErrorIs(t, err, app_errors.ErrBusy)

	after, _ := term.ActiveSession()
	assert.Equal(t, before, after)
	assert.Equal(t, service.StateStreaming, term.State())

	close(release)
	require.NoError(t, term.Wait(ctx))

	final, _ := term.ActiveSession()
	require.Len(t, final.Messages, 2)
	assert.Equal(t, "thinking", final.Messages[1].Content)
}

func TestTerminal_ObserverMaySubmit(t *testing.T) {
	streamer := mock_llm.NewMockChatStreamer(t)
	term := setupTerminal(t, streamer)
	expectStream(streamer, nil, model.StreamResponse{Content: "ok"}, model.StreamResponse{Done: true})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var submittedSession string
	var nestedErr error
	term.Subscribe(func(ev service.Event) {
		if ev.State == service.StateSubmitted {
			submittedSession = ev.SessionID
			nestedErr = term.Submit(ctx, "from an observer")
		}
	})

	require.NoError(t, term.Submit(ctx, "hello"))
	require.NoError(t, term.Wait(ctx))

	session, ok := term.ActiveSession()
	require.True(t, ok)
	assert.Equal(t, session.ID, submittedSession)
	assert.ErrorIs(t, nestedErr, app_errors.ErrBusy)
	require.Len(t, session.Messages, 2)
}

func TestTerminal_Submit_RequestCarriesSettings(t *testing.T) {
	ctx := context.Background()
	streamer := mock_llm.NewMockChatStreamer(t)
	term := setupTerminal(t, streamer)

	settings := term.Settings()
	settings.Provider = model.ProviderDeepSeek
	settings.Model = "deepseek-chat"
	settings.APIKeys[model.ProviderDeepSeek] = "sk-deep"
	settings.APIKeys[model.ProviderOpenAI] = "sk-open"
	require.NoError(t, term.UpdateSettings(ctx, settings))

	streamer.On("Stream", mock.Anything, mock.MatchedBy(func(req *model.ChatRequest) bool {
		return req.Provider == model.ProviderDeepSeek && req.Model == "deepseek-chat" && req.APIKey == "sk-deep"
	}), mock.Anything).
		Run(replies(model.StreamResponse{Done: true})).
		Return(nil).Once()

	submitAndWait(t, term, "hi")
}

func TestTerminal_Submit_EmptyText(t *testing.T) {
	term := setupTerminal(t, mock_llm.NewMockChatStreamer(t))

	err := term.Submit(context.Background(), "   ")
	assert.ErrorIs(t, err, app_errors.ErrValidation)
	assert.Empty(t, term.Sessions())
}

func TestTerminal_SessionManagement(t *testing.T) {
	term := setupTerminal(t, mock_llm.NewMockChatStreamer(t))

	a := term.NewSession()
	b := term.NewSession()

	active, _ := term.ActiveSession()
	assert.Equal(t, b.ID, active.ID)

	require.NoError(t, term.SetActiveSession(a.ID))
	active, _ = term.ActiveSession()
	assert.Equal(t, a.ID, active.ID)

	require.NoError(t, term.DeleteSession(a.ID))
	_, ok := term.ActiveSession()
	assert.False(t, ok)
	assert.ErrorIs(t, term.SetActiveSession(a.ID), app_errors.ErrSessionNotFound)
}

func TestTerminal_UpdateSettings_RejectsUnknownModel(t *testing.T) {
	term := setupTerminal(t, mock_llm.NewMockChatStreamer(t))

	settings := term.Settings()
	settings.Model = "deepseek-chat"
	err := term.UpdateSettings(context.Background(), settings)
	assert.ErrorIs(t, err, app_errors.ErrValidation)
	assert.Equal(t, "gpt-4o", term.Settings().Model)
}
