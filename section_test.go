package osm_test

import (
	"testing"

	"github.com/osmx/osm-go"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/osmx/osm-go/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSections(t *testing.T) {
	o := NewTestOSM(t)

	sections, err := osm.GetSections(ctx, o.API)
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "Beavers", sections[0].Name)
	assert.Equal(t, models.SectionTypeCubs, sections[1].Type)
	assert.Equal(t, []models.FlexiRecord{{ID: 11, SectionID: 1, Name: "Camp kit"}}, sections[0].FlexiRecords)

	_, err = osm.GetSections(ctx, o.API)
	require.NoError(t, err)
	assert.Equal(t, 1, o.Count("api.php?action=getUserRoles"), "second call is served from the cache")

	_, err = osm.GetSections(ctx, o.API, osm.NoReadCache())
	require.NoError(t, err)
	assert.Equal(t, 2, o.Count("api.php?action=getUserRoles"))

	s, err := osm.GetSection(ctx, o.API, cubs)
	require.NoError(t, err)
	assert.Equal(t, "Cubs", s.Name)

	_, err = osm.GetSection(ctx, o.API, 99)
	assert.ErrorIs(t, err, constants.ErrNotFound)

	def, err := osm.GetDefaultSection(ctx, o.API)
	require.NoError(t, err)
	assert.Equal(t, beavers, def.ID)
}

func TestGetSectionsNoRoles(t *testing.T) {
	o := NewTestOSM(t)
	o.Clear("api.php?action=getUserRoles")
	o.JSON("api.php?action=getUserRoles", []any{})
	_, err := osm.GetSections(ctx, o.API, osm.NoReadCache())
	assert.ErrorIs(t, err, constants.ErrNoActiveRoles)
}

func TestPermissions(t *testing.T) {
	o := NewTestOSM(t)

	perms, err := osm.GetUserPermissions(ctx, o.API)
	require.NoError(t, err)
	assert.True(t, perms[beavers].Can(models.PermissionAdminister, models.AreaFinance))
	assert.False(t, perms[cubs].Can(models.PermissionWrite, models.AreaMember))

	assert.NoError(t, osm.RequireAbilityTo(ctx, o.API, models.PermissionWrite, models.AreaMember, beavers))

	err = osm.RequireAbilityTo(ctx, o.API, models.PermissionWrite, models.AreaMember, cubs)
	assert.ErrorIs(t, err, constants.ErrForbidden)
	assert.EqualError(t, err, "Your OSM user does not have permission to write on member for Cubs.")

	err = osm.RequireAccessToSection(ctx, o.API, 99)
	assert.ErrorIs(t, err, constants.ErrForbidden)

	assert.NoError(t, osm.RequireSubscription(ctx, o.API, models.SubscriptionGold, beavers))
	err = osm.RequireSubscription(ctx, o.API, models.SubscriptionSilver, cubs)
	var forbidden *osm.ForbiddenError
	require.ErrorAs(t, err, &forbidden)
	assert.Contains(t, forbidden.Message, "Silver")
}

func TestAPIPermissionsMissing(t *testing.T) {
	o := NewTestOSM(t)
	o.Clear("ext/settings/access/?action=getAPIAccess")
	o.JSON("ext/settings/access/?action=getAPIAccess", map[string]any{"apis": []any{
		map[string]any{"apiid": testAPIID, "permissions": map[string]any{"member": 10}},
	}})

	can, err := osm.APICan(ctx, o.API, models.PermissionRead, models.AreaMember, beavers, osm.NoReadCache())
	require.NoError(t, err)
	assert.True(t, can)

	err = osm.RequireAbilityTo(ctx, o.API, models.PermissionWrite, models.AreaMember, beavers)
	assert.EqualError(t, err, "You have not granted the write permissions on member to the API for Beavers.")
}

func TestTerms(t *testing.T) {
	o := NewTestOSM(t)

	terms, err := osm.GetTermsForSection(ctx, o.API, beavers)
	require.NoError(t, err)
	require.Len(t, terms, 2)
	assert.Equal(t, "Last", terms[0].Name)
	assert.Empty(t, terms[1].Changed())

	current, err := osm.GetCurrentTerm(ctx, o.API, beavers)
	require.NoError(t, err)
	assert.Equal(t, currentTerm, current.ID)

	_, err = osm.GetCurrentTerm(ctx, o.API, cubs)
	assert.ErrorIs(t, err, constants.ErrNotFound)

	term, err := osm.GetTerm(ctx, o.API, 20)
	require.NoError(t, err)
	assert.Equal(t, cubs, term.SectionID)
}

func TestCreateAndUpdateTerm(t *testing.T) {
	o := NewTestOSM(t)
	o.JSON("users.php?action=addTerm", map[string]any{"terms": map[string]any{}})
	o.JSON("users.php?action=addTerm", map[string]any{"terms": map[string]any{}})
	o.JSON("users.php?action=addTerm", []any{})

	terms, err := osm.GetTermsForSection(ctx, o.API, beavers)
	require.NoError(t, err)
	term := terms[1]

	ok, err := osm.UpdateTerm(ctx, o.API, &term)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 0, o.Count("users.php?action=addTerm"), "nothing changed")

	term.Name = "Renamed"
	ok, err = osm.UpdateTerm(ctx, o.API, &term)
	require.NoError(t, err)
	assert.True(t, ok)
	req, _ := o.Last("users.php?action=addTerm")
	assert.Equal(t, "Renamed", req.Form.Get("term"))
	assert.Equal(t, "10", req.Form.Get("termid"))
	assert.Equal(t, "1", req.Query.Get("sectionid"))

	created := models.Term{SectionID: beavers, Name: "Next", Start: term.Finish.AddDate(0, 0, 1), Finish: term.Finish.AddDate(0, 3, 0)}
	ok, err = osm.CreateTerm(ctx, o.API, &created)
	require.NoError(t, err)
	assert.True(t, ok)

	invalid := models.Term{SectionID: beavers, Name: "Backwards", Start: term.Finish, Finish: term.Start}
	ok, err = osm.CreateTerm(ctx, o.API, &invalid)
	assert.False(t, ok)
	assert.ErrorIs(t, err, constants.ErrInvalidObject)

	created = models.Term{SectionID: beavers, Name: "Next", Start: term.Finish.AddDate(0, 0, 1), Finish: term.Finish.AddDate(0, 3, 0)}
	ok, err = osm.CreateTerm(ctx, o.API, &created)
	require.NoError(t, err)
	assert.False(t, ok)
}
