package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandlink/engine/internal/models"
	appErr "github.com/brandlink/engine/pkg/errors"
)

func collaboratorInput(campaignID, amount string) CreateCollaboratorInput {
	return CreateCollaboratorInput{
		CampaignID:   campaignID,
		Name:         "Noa",
		Email:        "noa@example.com",
		AgreedAmount: mustDecimal(amount),
		Currency:     "EUR",
	}
}

func TestCollaboratorRejectsMissingOrDeletedCampaign(t *testing.T) {
	env := newEnv(t)
	owner := env.user(t, models.RoleBrand, "brand@acme.io")
	deleted := env.campaign(t, owner, models.CampaignActive)
	require.NoError(t, env.campaigns.SoftDelete(env.ctx, deleted))

	for _, campaignID := range []string{"does-not-exist", deleted} {
		_, err := env.collaborators.Create(env.ctx, collaboratorInput(campaignID, "300"))
		require.Error(t, err)
		assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
	}

	assert.Empty(t, env.persisted(t).Collaborators)
	assert.Zero(t, env.auditCount(t, models.KindCollaborator))
}

func TestCollaboratorCreateDefaultsAndValidation(t *testing.T) {
	env := newEnv(t)
	owner := env.user(t, models.RoleBrand, "brand@acme.io")
	campaign := env.campaign(t, owner, models.CampaignActive)

	in := collaboratorInput(campaign, "-5")
	_, err := env.collaborators.Create(env.ctx, in)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	in = collaboratorInput(campaign, "300")
	in.AdStatus = "Paused"
	_, err = env.collaborators.Create(env.ctx, in)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	in = collaboratorInput(campaign, "300")
	in.InfluencerUserID = ptr("ghost")
	_, err = env.collaborators.Create(env.ctx, in)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	id, err := env.collaborators.Create(env.ctx, collaboratorInput(campaign, "300"))
	require.NoError(t, err)
	c, err := env.collaborators.GetByID(env.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.AdActive, c.AdStatus)
	assert.True(t, mustDecimal("300").Equal(c.AgreedAmount))
}

func TestCollaboratorsHiddenWhenCampaignDeleted(t *testing.T) {
	env := newEnv(t)
	owner := env.user(t, models.RoleBrand, "brand@acme.io")
	campaign := env.campaign(t, owner, models.CampaignActive)
	id, err := env.collaborators.Create(env.ctx, collaboratorInput(campaign, "300"))
	require.NoError(t, err)

	listed, err := env.collaborators.ListByCampaign(env.ctx, campaign)
	require.NoError(t, err)
	require.Len(t, listed, 1)

	require.NoError(t, env.campaigns.SoftDelete(env.ctx, campaign))

	listed, err = env.collaborators.ListByCampaign(env.ctx, campaign)
	require.NoError(t, err)
	assert.Empty(t, listed)

	byOwner, err := env.collaborators.ListByOwner(env.ctx, owner)
	require.NoError(t, err)
	assert.Empty(t, byOwner)

	_, err = env.collaborators.GetByID(env.ctx, id)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))
	_, err = env.collaborators.Update(env.ctx, id, CollaboratorPatch{Name: models.Some("Noa B")})
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	// No cascade: the collaborator row itself is not deleted.
	persisted := env.persisted(t)
	require.Len(t, persisted.Collaborators, 1)
	assert.Nil(t, persisted.Collaborators[0].DeletedAt)
}

func TestCollaboratorUpdateAndSoftDelete(t *testing.T) {
	env := newEnv(t)
	owner := env.user(t, models.RoleBrand, "brand@acme.io")
	influencer := env.user(t, models.RoleInfluencer, "noa@example.com")
	campaign := env.campaign(t, owner, models.CampaignActive)
	id, err := env.collaborators.Create(env.ctx, collaboratorInput(campaign, "300"))
	require.NoError(t, err)

	c, err := env.collaborators.Update(env.ctx, id, CollaboratorPatch{
		InfluencerUserID: models.Some(influencer),
		AdStatus:         models.Some(models.AdFinished),
		AgreedAmount:     models.Some(mustDecimal("450.25")),
	})
	require.NoError(t, err)
	require.NotNil(t, c.InfluencerUserID)
	assert.Equal(t, influencer, *c.InfluencerUserID)
	assert.Equal(t, models.AdFinished, c.AdStatus)
	assert.Equal(t, "noa@example.com", c.Email)

	c, err = env.collaborators.Update(env.ctx, id, CollaboratorPatch{InfluencerUserID: models.Null[string]()})
	require.NoError(t, err)
	assert.Nil(t, c.InfluencerUserID)

	_, err = env.collaborators.Update(env.ctx, id, CollaboratorPatch{Currency: models.Null[string]()})
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	require.NoError(t, env.collaborators.SoftDelete(env.ctx, id))
	err = env.collaborators.SoftDelete(env.ctx, id)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	listed, err := env.collaborators.ListByCampaign(env.ctx, campaign)
	require.NoError(t, err)
	assert.Empty(t, listed)
}
