package llm

import "context"

// MockClient reemplaza al tutor real en tests: respuesta y error fijos, y
// retiene el último prompt para poder asertar cómo se construyó.
type MockClient struct {
	Response   string
	Err        error
	LastPrompt string
}

func (m *MockClient) Generate(_ context.Context, prompt string) (string, error) {
	m.LastPrompt = prompt
	return m.Response, m.Err
}
