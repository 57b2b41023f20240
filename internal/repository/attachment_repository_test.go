package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandlink/engine/internal/models"
	appErr "github.com/brandlink/engine/pkg/errors"
)

func TestAttachmentLifecycle(t *testing.T) {
	env := newEnv(t)

	_, err := env.attachments.Create(env.ctx, CreateAttachmentInput{FileName: "brief.pdf", MimeType: "application/pdf", URL: "not a url"})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	id, err := env.attachments.Create(env.ctx, CreateAttachmentInput{
		FileName:  "brief.pdf",
		MimeType:  "application/pdf",
		SizeBytes: 20480,
		URL:       "https://cdn.example.com/brief.pdf",
	})
	require.NoError(t, err)

	a, err := env.attachments.Update(env.ctx, id, AttachmentPatch{FileName: models.Some("brief-v2.pdf")})
	require.NoError(t, err)
	assert.Equal(t, "brief-v2.pdf", a.FileName)
	assert.Equal(t, int64(20480), a.SizeBytes)

	pending, err := env.attachments.ListUnattached(env.ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 1)

	require.NoError(t, env.attachments.SoftDelete(env.ctx, id))
	assert.True(t, appErr.IsCode(env.attachments.SoftDelete(env.ctx, id), appErr.CodeNotFound))

	pending, err = env.attachments.ListUnattached(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}
