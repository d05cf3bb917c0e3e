package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"autoservice-agent/internal/domain"
)

type mockParams struct {
	vals map[string]string
	err  error
}

func (m *mockParams) GetParameter(_ context.Context, name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.vals[name]
	if !ok {
		return "", fmt.Errorf("param not found: %s", name)
	}
	return v, nil
}

func TestNewClient_Validates(t *testing.T) {
	_, err := NewClient(nil, "/agent")
	require.Error(t, err)

	_, err = NewClient(&mockParams{}, "  ")
	require.Error(t, err)
}

func TestNewClient_Options(t *testing.T) {
	c, err := NewClient(&mockParams{}, "/agent/", WithModel("gemini-2.0-flash"), WithDefaultMessage("Welcome!"))
	require.NoError(t, err)
	require.Equal(t, "gemini-2.0-flash", c.model)
	require.Equal(t, "Welcome!", c.defaultMessage)
	require.Equal(t, "/agent/gemini-api-token", c.tokenParameterName())
}

func TestSplitHistory_EmptyUsesFallback(t *testing.T) {
	prior, last := splitHistory(nil, "Welcome!")
	require.Empty(t, prior)
	require.Equal(t, "Welcome!", last)
}

func TestSplitHistory_RoleMapping(t *testing.T) {
	history := []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: "instructions"},
		{Role: domain.RoleAssistant, Content: "welcome"},
		{Role: domain.RoleUser, Content: "hi"},
		{Role: domain.RoleAssistant, Content: "hello"},
		{Role: domain.RoleUser, Content: "ABC123"},
	}

	prior, last := splitHistory(history, "unused")
	require.Equal(t, "ABC123", last)
	require.Len(t, prior, 4)
	require.Equal(t, string(genai.RoleUser), prior[0].Role)
	require.Equal(t, string(genai.RoleModel), prior[1].Role)
	require.Equal(t, string(genai.RoleUser), prior[2].Role)
	require.Equal(t, string(genai.RoleModel), prior[3].Role)
	require.Equal(t, "instructions", prior[0].Parts[0].Text)
}

func TestFragmentTexts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{
				Content: &genai.Content{
					Parts: []*genai.Part{
						{Text: "Found "},
						{Text: "thinking...", Thought: true},
						{Text: ""},
						{Text: "vehicle."},
					},
				},
			},
		},
	}
	require.Equal(t, []string{"Found ", "vehicle."}, fragmentTexts(resp))
	require.Nil(t, fragmentTexts(nil))
	require.Nil(t, fragmentTexts(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}))
}

func TestFetchAPIKey(t *testing.T) {
	ps := &mockParams{vals: map[string]string{
		"/agent/gemini-api-token": `{"token":"key-123"}`,
	}}

	key, err := fetchAPIKeyFromParamStore(context.Background(), ps, "/agent/gemini-api-token")
	require.NoError(t, err)
	require.Equal(t, "key-123", key)
}

func TestFetchAPIKey_Failures(t *testing.T) {
	cases := []struct {
		name string
		ps   *mockParams
	}{
		{name: "paramstore error", ps: &mockParams{err: errors.New("denied")}},
		{name: "not json", ps: &mockParams{vals: map[string]string{"/agent/gemini-api-token": "raw-key"}}},
		{name: "empty token", ps: &mockParams{vals: map[string]string{"/agent/gemini-api-token": `{"token":""}`}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fetchAPIKeyFromParamStore(context.Background(), tc.ps, "/agent/gemini-api-token")
			require.Error(t, err)
		})
	}
}

func TestStartStream_ParamstoreFailureTerminates(t *testing.T) {
	c, err := NewClient(&mockParams{err: errors.New("denied")}, "/agent", WithLogger(discardLogger()))
	require.NoError(t, err)

	fragments := c.StartStream(context.Background(), []domain.ChatMessage{{Role: domain.RoleUser, Content: "hi"}})
	require.Empty(t, drain(t, fragments))
}
