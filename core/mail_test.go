package core

import (
	"io/fs"
	"net/mail"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appfs "github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/fs"
)

var testBase = ContextData{AppName: "Aprovia", FrontendBaseURL: "https://aprovia.app"}

func TestEmbeddedBaseTemplates(t *testing.T) {
	for _, name := range []string{"_base.txt", "_base.gohtml"} {
		_, err := fs.Stat(appfs.FS, emailTemplatesDir+"/"+name)
		assert.NoError(t, err, name)
	}
}

func TestEmailMessage_Render(t *testing.T) {
	tests := []struct {
		name     string
		msg      EmailMessage
		wantText []string
		wantHTML []string
	}{
		{
			name: "password code",
			msg: EmailMessage{
				TemplateName: "verification_code",
				TemplateData: map[string]interface{}{"Code": "4821", "Purpose": "password", "ExpiresInMinutes": 10},
			},
			wantText: []string{"4821", "alterar a senha", "10 minutos", "Equipe Aprovia", "https://aprovia.app"},
			wantHTML: []string{"4821", "alterar a senha", "<html"},
		},
		{
			name: "email code",
			msg: EmailMessage{
				TemplateName: "verification_code",
				TemplateData: map[string]interface{}{"Code": "0093", "Purpose": "email", "ExpiresInMinutes": 15},
			},
			wantText: []string{"0093", "alterar o e-mail", "15 minutos"},
			wantHTML: []string{"0093", "alterar o e-mail"},
		},
		{
			name: "welcome premium",
			msg: EmailMessage{
				TemplateName: "welcome",
				TemplateData: map[string]interface{}{"Email": "aluna@escola.com", "IsPremium": true},
			},
			wantText: []string{"Bem-vindo(a) ao Aprovia!", "aluna@escola.com", "Premium"},
			wantHTML: []string{"aluna@escola.com", "Premium", `href="https://aprovia.app"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := tt.msg
			msg.To = []mail.Address{{Address: "aluna@escola.com"}}
			require.NoError(t, msg.Render(testBase))

			require.NotEmpty(t, msg.TextContent)
			require.NotEmpty(t, msg.HTMLContent)
			assert.True(t, msg.Sendable())
			for _, s := range tt.wantText {
				assert.Contains(t, msg.TextContent, s)
			}
			for _, s := range tt.wantHTML {
				assert.Contains(t, msg.HTMLContent, s)
			}
		})
	}

	t.Run("welcome without premium", func(t *testing.T) {
		msg := EmailMessage{
			TemplateName: "welcome",
			TemplateData: map[string]interface{}{"Email": "aluno@escola.com", "IsPremium": false},
		}
		require.NoError(t, msg.Render(testBase))
		assert.NotContains(t, msg.TextContent, "Premium")
	})

	t.Run("missing data", func(t *testing.T) {
		msg := EmailMessage{TemplateName: "verification_code", TemplateData: map[string]interface{}{"Code": "1234"}}
		assert.Error(t, msg.Render(testBase))
	})

	t.Run("unknown template", func(t *testing.T) {
		msg := EmailMessage{TemplateName: "boletim"}
		assert.Error(t, msg.Render(testBase))
	})

	t.Run("plain body", func(t *testing.T) {
		msg := EmailMessage{BodyStr: "olá"}
		require.NoError(t, msg.Render(testBase))
		assert.Equal(t, "olá", msg.TextContent)
		assert.Empty(t, msg.HTMLContent)
		assert.False(t, msg.Sendable())
	})
}
