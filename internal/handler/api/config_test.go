//go:build unit

package api_test

import (
	"context"
	"net/http"
	"testing"

	"storefront/internal/domain/cart"
	"storefront/internal/domain/catalog"
	"storefront/internal/domain/module"
	"storefront/internal/handler/api"
	resdto "storefront/internal/handler/dto/response"
	"storefront/internal/pkg/errs"
	"storefront/internal/usecase/commands"
	"storefront/tests/common/builder"
	"storefront/tests/common/httptest"
	commandsmock "storefront/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ConfigHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockConfigCommands
	handler      *api.ConfigHandler
}

func (s *ConfigHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockConfigCommands(s.mockCtrl)
	s.handler = api.NewConfigHandler(s.mockCommands)

	g := s.router.Group("/order/:form", withSession(testSessionID))
	g.GET("/config", s.handler.Prepare)
	g.POST("/config", s.handler.Submit)
	g.POST("/config/package-options", s.handler.PackageOptions)
}

func (s *ConfigHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestConfigHandlerSuite(t *testing.T) {
	suite.Run(t, new(ConfigHandlerTestSuite))
}

func prepareWith(req commands.ConfigRequest, ajax bool) gomock.Matcher {
	return gomock.Eq(commands.PrepareInput{FormLabel: "default", Request: req, Ajax: ajax})
}

func (s *ConfigHandlerTestSuite) TestPrepare() {
	s.Run("success: renders the form for a new selection", func() {
		group := builder.NewGroup("Hosting", catalog.GroupStandard)
		pb := builder.NewPackageBuilder(group.ID).WithModule(module.NameDomain)
		pkg := pb.Build()
		req := commands.NewFromSelection{PricingID: pb.PricingID(), GroupID: group.ID}
		nonce := uuid.New()

		s.mockCommands.EXPECT().Prepare(gomock.Any(), testSessionID, prepareWith(req, false)).
			Return(&commands.ConfigResult{View: &commands.ConfigView{
				Request: req,
				Item:    cart.Item{UUID: nonce, PricingID: pb.PricingID(), GroupID: group.ID, Qty: 1},
				Package: pkg,
				Pricing: pkg.Pricings[0],
				Group:   group,
				Fields:  module.FieldSet{{Name: "domain", Label: "Domain", Type: module.FieldText}},
			}}, nil).Times(1)

		url := "/order/default/config?pricing_id=" + pb.PricingID().String() + "&group_id=" + group.ID.String()
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, "")

		var res resdto.ConfigResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
		s.Require().NotNil(res.View)
		s.Nil(res.Step)
		s.Equal("new", res.View.Mode)
		s.Nil(res.View.Index)
		s.Equal(nonce, res.View.Nonce)
		s.Equal(pkg.Name, res.View.Package.Name)
		s.Equal("10.00", res.View.Pricing.Price)
		s.Require().Len(res.View.Fields, 1)
		s.Equal("domain", res.View.Fields[0].Name)
		s.NotNil(res.View.AddonGroups)
		s.NotNil(res.View.Options)
	})

	s.Run("success: a skippable queue entry returns the next step", func() {
		s.mockCommands.EXPECT().Prepare(gomock.Any(), testSessionID, prepareWith(commands.ResumeQueue{QueueIndex: 0}, false)).
			Return(&commands.ConfigResult{Step: &commands.Step{Kind: commands.StepCart}}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/order/default/config?q_item=0", nil, "")

		var res resdto.ConfigResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
		s.Nil(res.View)
		s.Require().NotNil(res.Step)
		s.Equal("cart", res.Step.Next)
	})

	s.Run("success: editing a cart item in ajax mode", func() {
		s.mockCommands.EXPECT().Prepare(gomock.Any(), testSessionID, prepareWith(commands.EditExisting{ItemIndex: 2}, true)).
			Return(&commands.ConfigResult{Step: &commands.Step{Kind: commands.StepCatalog, Notice: "item no longer exists"}}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/order/default/config?item=2&ajax=true", nil, "")

		var res resdto.ConfigResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
		s.Equal("catalog", res.Step.Next)
		s.Equal("item no longer exists", res.Step.Notice)
	})

	s.Run("error: the target must name exactly one entry", func() {
		for _, query := range []string{"", "?item=0&q_item=0", "?pricing_id=" + uuid.NewString(), "?item=1&group_id=" + uuid.NewString()} {
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/order/default/config"+query, nil, "")
			httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid configuration request")
		}
	})

	s.Run("error: malformed parameters are 400", func() {
		for _, query := range []string{"?pricing_id=nope&group_id=" + uuid.NewString(), "?q_item=-1", "?item=abc"} {
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/order/default/config"+query, nil, "")
			httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
		}
	})
}

func (s *ConfigHandlerTestSuite) TestSubmit() {
	url := "/order/default/config"
	nonce := uuid.New()

	s.Run("success: promotes the entry and returns the next step", func() {
		expected := commands.SubmitInput{
			FormLabel: "default",
			Request:   commands.ResumeQueue{QueueIndex: 0},
			Nonce:     nonce,
			Fields:    map[string]string{"domain": "example.com"},
		}
		s.mockCommands.EXPECT().Submit(gomock.Any(), testSessionID, expected).
			Return(&commands.ConfigResult{Step: &commands.Step{Kind: commands.StepConfigure, QueueIndex: 0}}, nil).Times(1)

		body := map[string]any{"q_item": 0, "nonce": nonce, "fields": map[string]string{"domain": "example.com"}}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")

		var res resdto.ConfigResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
		s.Require().NotNil(res.Step)
		s.Equal("configure", res.Step.Next)
		s.Require().NotNil(res.Step.QueueIndex)
		s.Equal(0, *res.Step.QueueIndex)
	})

	s.Run("success: an empty addon list replaces the addons", func() {
		s.mockCommands.EXPECT().Submit(gomock.Any(), testSessionID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ string, in commands.SubmitInput) (*commands.ConfigResult, error) {
				s.NotNil(in.Addons)
				s.Empty(in.Addons)
				s.Equal(commands.EditExisting{ItemIndex: 1}, in.Request)
				return &commands.ConfigResult{Step: &commands.Step{Kind: commands.StepCart}}, nil
			}).Times(1)

		body := map[string]any{"item": 1, "nonce": nonce, "addons": []any{}}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, nil)
	})

	s.Run("error: field errors are 422 with detail", func() {
		verr := errs.NewValidationError()
		verr.Add("domain", "is already in your cart")
		s.mockCommands.EXPECT().Submit(gomock.Any(), testSessionID, gomock.Any()).Return(nil, verr).Times(1)

		body := map[string]any{"q_item": 0, "nonce": nonce}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "Validation failed")
		s.Equal([]string{"is already in your cart"}, httptest.ErrorDetail(s.T(), rec)["domain"])
	})

	s.Run("error: invalid item is 422", func() {
		s.mockCommands.EXPECT().Submit(gomock.Any(), testSessionID, gomock.Any()).
			Return(nil, errs.Wrap(commands.ErrInvalidItem, "revalidate")).Times(1)

		body := map[string]any{"q_item": 0, "nonce": nonce}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "Item is not available")
	})

	s.Run("error: ambiguous target is 400", func() {
		body := map[string]any{"q_item": 0, "item": 0, "nonce": nonce}
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, body, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid configuration request")
	})
}

func (s *ConfigHandlerTestSuite) TestPackageOptions() {
	url := "/order/default/config/package-options"
	pricingID := uuid.New()

	s.Run("success: returns evaluated options and their errors", func() {
		selected := map[string]string{"os": "linux"}
		states := []catalog.OptionState{{
			Option: catalog.Option{
				Name:  "panel",
				Label: "Control panel",
				Type:  catalog.OptionSelect,
				Values: []catalog.OptionValue{
					{Value: "cpanel", Name: "cPanel", Price: decimal.RequireFromString("15")},
				},
			},
			Enabled: true,
			Require: true,
		}}
		s.mockCommands.EXPECT().PackageOptions(gomock.Any(), commands.PackageOptionsInput{PricingID: pricingID, Selected: selected}).
			Return(states, map[string][]string{"panel": {"is required"}}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"pricing_id": pricingID, "selected": selected}, "")

		var res resdto.PackageOptionsResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &res)
		s.Require().Len(res.Options, 1)
		s.True(res.Options[0].Required)
		s.Equal("15.00", res.Options[0].Values[0].Price)
		s.Equal([]string{"is required"}, res.Errors["panel"])
	})

	s.Run("error: missing pricing_id is 400", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, map[string]any{"selected": map[string]string{}}, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request")
	})
}
