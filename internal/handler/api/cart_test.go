//go:build unit

package api_test

import (
	"net/http"
	"testing"
	"time"

	"stockroom/internal/handler/api"
	reqdto "stockroom/internal/handler/dto/request"
	resdto "stockroom/internal/handler/dto/response"
	"stockroom/internal/pkg/errs"
	"stockroom/internal/usecase/commands"
	"stockroom/internal/usecase/queries"
	commonhttp "stockroom/tests/common/httptest"
	commandsmock "stockroom/tests/mock/commands"
	queriesmock "stockroom/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type CartHandlerTestSuite struct {
	suite.Suite
	router           *gin.Engine
	mockCtrl         *gomock.Controller
	mockReservations *commandsmock.MockReservationCommands
	mockOrders       *commandsmock.MockOrderCommands
	mockQueries      *queriesmock.MockCartQueries
	handler          *api.CartHandler
}

func (s *CartHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockReservations = commandsmock.NewMockReservationCommands(s.mockCtrl)
	s.mockOrders = commandsmock.NewMockOrderCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockCartQueries(s.mockCtrl)
	s.handler = api.NewCartHandler(s.mockReservations, s.mockOrders, s.mockQueries)

	s.router.POST("/carts/:cartId/items", s.handler.Reserve)
	s.router.PATCH("/carts/:cartId/items/:productId", s.handler.ChangeQuantity)
	s.router.POST("/carts/:cartId/items/:productId/touch", s.handler.Extend)
	s.router.DELETE("/carts/:cartId/items/:productId", s.handler.ReleaseLine)
	s.router.DELETE("/carts/:cartId", s.handler.ClearCart)
	s.router.GET("/carts/:cartId", s.handler.GetCart)
	s.router.POST("/carts/:cartId/checkout", s.handler.Checkout)
}

func (s *CartHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestCartHandlerSuite(t *testing.T) {
	suite.Run(t, new(CartHandlerTestSuite))
}

func (s *CartHandlerTestSuite) TestReserve() {
	cartID := uuid.New()
	productID := uuid.New()
	expiresAt := time.Date(2025, 6, 1, 12, 1, 2, 0, time.UTC)

	s.Run("success", func() {
		s.mockReservations.EXPECT().
			Reserve(gomock.Any(), cartID, productID, 2, "").
			Return(&commands.ReserveResult{
				HoldID:    uuid.New(),
				UnitIDs:   []uuid.UUID{uuid.New(), uuid.New()},
				ExpiresAt: expiresAt,
			}, nil)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, "/carts/"+cartID.String()+"/items",
			reqdto.ReserveLineRequest{ProductID: productID, Quantity: 2}, "")

		s.Equal(http.StatusCreated, w.Code)

		var resp resdto.ReserveResponse
		_ = commonhttp.DecodeResponseBody(s.T(), w.Body, &resp)
		s.Len(resp.UnitIDs, 2)
		s.True(expiresAt.Equal(resp.ExpiresAt))
	})

	s.Run("insufficient inventory reports available count", func() {
		s.mockReservations.EXPECT().
			Reserve(gomock.Any(), cartID, productID, 5, "").
			Return(nil, &commands.InsufficientInventoryError{Requested: 5, Available: 1})

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, "/carts/"+cartID.String()+"/items",
			reqdto.ReserveLineRequest{ProductID: productID, Quantity: 5}, "")

		s.Equal(http.StatusConflict, w.Code)

		var resp struct {
			Available int `json:"available"`
		}
		_ = commonhttp.DecodeResponseBody(s.T(), w.Body, &resp)
		s.Equal(1, resp.Available)
	})

	s.Run("invalid body", func() {
		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, "/carts/"+cartID.String()+"/items",
			map[string]any{"quantity": "two"}, "")

		s.Equal(http.StatusBadRequest, w.Code)
	})

	s.Run("invalid cart id", func() {
		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost, "/carts/not-a-uuid/items",
			reqdto.ReserveLineRequest{ProductID: productID, Quantity: 1}, "")

		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *CartHandlerTestSuite) TestChangeQuantity() {
	cartID := uuid.New()
	productID := uuid.New()

	s.Run("success", func() {
		s.mockReservations.EXPECT().
			ChangeQuantity(gomock.Any(), cartID, productID, 3, "").
			Return(&commands.ReserveResult{UnitIDs: []uuid.UUID{uuid.New()}}, nil)

		qty := 3
		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPatch,
			"/carts/"+cartID.String()+"/items/"+productID.String(),
			reqdto.ChangeQuantityRequest{Quantity: &qty}, "")

		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("missing quantity", func() {
		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPatch,
			"/carts/"+cartID.String()+"/items/"+productID.String(),
			map[string]any{}, "")

		s.Equal(http.StatusBadRequest, w.Code)
	})
}

func (s *CartHandlerTestSuite) TestExtend() {
	cartID := uuid.New()
	productID := uuid.New()

	s.Run("success", func() {
		expiresAt := time.Date(2025, 6, 1, 12, 2, 0, 0, time.UTC)
		s.mockReservations.EXPECT().
			Extend(gomock.Any(), cartID, productID).
			Return(expiresAt, nil)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost,
			"/carts/"+cartID.String()+"/items/"+productID.String()+"/touch", nil, "")

		s.Equal(http.StatusOK, w.Code)
	})

	s.Run("no hold for product", func() {
		s.mockReservations.EXPECT().
			Extend(gomock.Any(), cartID, productID).
			Return(time.Time{}, errs.Mark(errs.New("active hold not found"), errs.ErrProductNotHeld))

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost,
			"/carts/"+cartID.String()+"/items/"+productID.String()+"/touch", nil, "")

		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("line locked by a pending order", func() {
		s.mockReservations.EXPECT().
			Extend(gomock.Any(), cartID, productID).
			Return(time.Time{}, errs.ErrLineInPendingOrder)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost,
			"/carts/"+cartID.String()+"/items/"+productID.String()+"/touch", nil, "")

		s.Equal(http.StatusConflict, w.Code)
	})
}

func (s *CartHandlerTestSuite) TestReleaseLine() {
	cartID := uuid.New()
	productID := uuid.New()

	s.Run("success", func() {
		s.mockReservations.EXPECT().
			Release(gomock.Any(), cartID, productID).
			Return(nil)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodDelete,
			"/carts/"+cartID.String()+"/items/"+productID.String(), nil, "")

		s.Equal(http.StatusNoContent, w.Code)
	})

	s.Run("line locked by a pending order", func() {
		s.mockReservations.EXPECT().
			Release(gomock.Any(), cartID, productID).
			Return(errs.ErrLineInPendingOrder)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodDelete,
			"/carts/"+cartID.String()+"/items/"+productID.String(), nil, "")

		s.Equal(http.StatusConflict, w.Code)
	})
}

func (s *CartHandlerTestSuite) TestClearCart() {
	cartID := uuid.New()

	s.mockReservations.EXPECT().
		ClearCart(gomock.Any(), cartID).
		Return(nil)

	w := commonhttp.PerformRequest(s.T(), s.router, http.MethodDelete,
		"/carts/"+cartID.String(), nil, "")

	s.Equal(http.StatusNoContent, w.Code)
}

func (s *CartHandlerTestSuite) TestGetCart() {
	cartID := uuid.New()

	s.mockQueries.EXPECT().
		Lines(gomock.Any(), cartID).
		Return([]*queries.CartLineView{
			{ProductID: uuid.New(), HoldID: uuid.New(), Quantity: 2, ExpiresAt: time.Now().Add(time.Minute)},
		}, nil)

	w := commonhttp.PerformRequest(s.T(), s.router, http.MethodGet,
		"/carts/"+cartID.String(), nil, "")

	s.Equal(http.StatusOK, w.Code)

	var resp []*resdto.CartLineResponse
	_ = commonhttp.DecodeResponseBody(s.T(), w.Body, &resp)
	s.Len(resp, 1)
	s.Equal(2, resp[0].Quantity)
}

func (s *CartHandlerTestSuite) TestCheckout() {
	cartID := uuid.New()

	s.Run("success", func() {
		s.mockOrders.EXPECT().
			Checkout(gomock.Any(), cartID, "").
			Return(&commands.CheckoutResult{
				OrderID:          uuid.New(),
				HoldIDs:          []uuid.UUID{uuid.New()},
				ReserveExpiresAt: time.Now().Add(62 * time.Second),
			}, nil)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost,
			"/carts/"+cartID.String()+"/checkout", nil, "")

		s.Equal(http.StatusCreated, w.Code)
	})

	s.Run("empty cart", func() {
		s.mockOrders.EXPECT().
			Checkout(gomock.Any(), cartID, "").
			Return(nil, errs.ErrCartEmpty)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost,
			"/carts/"+cartID.String()+"/checkout", nil, "")

		s.Equal(http.StatusUnprocessableEntity, w.Code)
	})

	s.Run("unknown cart", func() {
		s.mockOrders.EXPECT().
			Checkout(gomock.Any(), cartID, "").
			Return(nil, errs.Mark(errs.New("cart not found"), errs.ErrCartNotFound))

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost,
			"/carts/"+cartID.String()+"/checkout", nil, "")

		s.Equal(http.StatusNotFound, w.Code)
	})

	s.Run("cart already has a pending order", func() {
		s.mockOrders.EXPECT().
			Checkout(gomock.Any(), cartID, "").
			Return(nil, errs.ErrLineInPendingOrder)

		w := commonhttp.PerformRequest(s.T(), s.router, http.MethodPost,
			"/carts/"+cartID.String()+"/checkout", nil, "")

		s.Equal(http.StatusConflict, w.Code)
	})
}
