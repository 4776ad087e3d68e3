package marketdata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/rxtech-lab/argo-history/pkg/errors"
)

type ProviderRegistryTestSuite struct {
	suite.Suite
}

func TestProviderRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(ProviderRegistryTestSuite))
}

func (suite *ProviderRegistryTestSuite) TestGetSupportedProviders() {
	providers := GetSupportedProviders()

	suite.Equal([]string{"polygon", "yahoo"}, providers)
}

func (suite *ProviderRegistryTestSuite) TestGetProviderInfo_Yahoo() {
	info, err := GetProviderInfo("yahoo")

	suite.NoError(err)
	suite.Equal("yahoo", info.Name)
	suite.Equal("Yahoo Finance", info.DisplayName)
	suite.False(info.RequiresAuth)
	suite.Empty(info.AuthEnvVar)
	suite.NotEmpty(info.Description)
}

func (suite *ProviderRegistryTestSuite) TestGetProviderInfo_Polygon() {
	info, err := GetProviderInfo("polygon")

	suite.NoError(err)
	suite.Equal("polygon", info.Name)
	suite.Equal("Polygon.io", info.DisplayName)
	suite.True(info.RequiresAuth)
	suite.Equal("POLYGON_API_KEY", info.AuthEnvVar)
	suite.NotEmpty(info.Description)
}

func (suite *ProviderRegistryTestSuite) TestGetProviderInfo_InvalidProvider() {
	_, err := GetProviderInfo("binance")

	suite.Error(err)
	suite.Contains(err.Error(), "unsupported provider")
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidProvider))
}

func (suite *ProviderRegistryTestSuite) TestGetConfigSchema() {
	schema, err := GetConfigSchema()

	suite.NoError(err)
	suite.NotEmpty(schema)

	var schemaMap map[string]interface{}
	err = json.Unmarshal([]byte(schema), &schemaMap)
	suite.Require().NoError(err)

	suite.Equal("object", schemaMap["type"])
	suite.Require().Contains(schemaMap, "properties")

	properties, ok := schemaMap["properties"].(map[string]interface{})
	suite.Require().True(ok)
	suite.Contains(properties, "tickers")
	suite.Contains(properties, "years_back")
	suite.Contains(properties, "provider")
	suite.Contains(properties, "format")
	suite.NotContains(properties, "PolygonApiKey")
}
