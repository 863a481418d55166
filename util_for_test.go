package osm_test

import (
	"context"
	"testing"
	"time"

	"github.com/osmx/osm-go"
	"github.com/osmx/osm-go/internal/fakeosm"
	"github.com/osmx/osm-go/pkg/cache"
	"github.com/osmx/osm-go/pkg/connection"
	"github.com/osmx/osm-go/pkg/constants"
	"github.com/stretchr/testify/require"
)

const (
	testAPIID  = "42"
	testUserID = "7"

	beavers = 1
	cubs    = 2
	// currentTerm belongs to beavers and always contains today
	currentTerm = 10
)

var ctx = context.Background()

// OSMForTest is a fake OSM with an API pointed at it. The fake already
// answers roles, API access and terms for two sections: Beavers (gold, full
// permissions) and Cubs (bronze, read only).
type OSMForTest struct {
	*fakeosm.Server
	API   *osm.API
	Store *cache.MemoryStore
}

func NewTestOSM(t testing.TB) *OSMForTest {
	t.Helper()

	srv := fakeosm.New()
	t.Cleanup(srv.Close)

	conf, err := connection.NewConfig(constants.SiteOSM, testAPIID, "token")
	require.NoError(t, err)
	conf.BaseURL = srv.URL

	store := cache.NewMemoryStore()
	api, err := osm.New(conf, osm.WithCache(cache.New(store)), osm.WithCredentials(testUserID, "secret"))
	require.NoError(t, err)

	o := &OSMForTest{Server: srv, API: api, Store: store}
	o.JSON("api.php?action=getUserRoles", roles())
	o.JSON("ext/settings/access/?action=getAPIAccess", map[string]any{"apis": []any{
		map[string]any{"apiid": testAPIID, "name": "Test", "permissions": fullPermissions()},
		map[string]any{"apiid": "99", "name": "Other", "permissions": map[string]any{}},
	}})
	o.JSON("api.php?action=getTerms", terms())
	return o
}

func fullPermissions() map[string]any {
	return map[string]any{
		"badge": 100, "member": 100, "user": 100, "register": 100, "contact": 100,
		"programme": 100, "events": 100, "flexi": 100, "finance": 100, "quartermaster": 100,
	}
}

func roles() []any {
	return []any{
		map[string]any{
			"sectionid": "1", "sectionname": "Beavers", "section": "beavers", "groupid": "3", "groupname": "1st Test",
			"isDefault": "1", "permissions": fullPermissions(),
			"sectionConfig": `{"subscription_level":3,"numscouts":20,"extraRecords":[{"name":"Camp kit","extraid":"11"}]}`,
		},
		map[string]any{
			"sectionid": "2", "sectionname": "Cubs", "section": "cubs", "groupid": "3", "groupname": "1st Test",
			"permissions":   map[string]any{"member": 10, "events": 10, "finance": 10, "badge": 10},
			"sectionConfig": `{"subscription_level":1}`,
		},
	}
}

func day(offset int) string {
	return time.Now().AddDate(0, 0, offset).Format("2006-01-02")
}

func terms() map[string]any {
	return map[string]any{
		"1": []any{
			map[string]any{"termid": "9", "sectionid": "1", "name": "Last", "startdate": day(-200), "enddate": day(-101)},
			map[string]any{"termid": "10", "sectionid": "1", "name": "Now", "startdate": day(-100), "enddate": day(100)},
		},
		"2": []any{
			map[string]any{"termid": "20", "sectionid": "2", "name": "Cubs past", "startdate": day(-300), "enddate": day(-200)},
		},
	}
}
