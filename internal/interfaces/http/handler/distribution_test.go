package handler

import (
	"net/http"
	"testing"

	invapp "github.com/fathiyyah28/proyek-sub000/internal/application/inventory"
	"github.com/fathiyyah28/proyek-sub000/internal/interfaces/http/dto"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistributionHandler_Lifecycle(t *testing.T) {
	api := newTestAPI(t)
	productID := api.createProduct("Oud Wood", 100, 1000)
	branchID := uuid.New()
	owner := ownerActor()

	w := api.as(&owner).do(http.MethodPost, "/api/v1/distributions", invapp.DistributeRequest{
		BranchID: branchID, ProductID: productID, UnitQuantity: 3, UnitVolumeMl: 100, Note: "Weekly",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	d := decodeData[invapp.DistributionResponse](t, w)
	assert.Equal(t, "PENDING", d.Status)
	assert.Equal(t, int64(300), d.QuantityMl)

	w = api.do(http.MethodGet, "/api/v1/stock/global/"+productID.String(), nil)
	assert.Equal(t, int64(700), decodeData[invapp.GlobalStockResponse](t, w).QuantityMl)
	assert.Zero(t, api.branchQty(branchID, productID), "goods in transit are in neither ledger")

	w = api.as(&owner).do(http.MethodPost, "/api/v1/distributions/"+d.ID.String()+"/confirm", nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "only the receiving branch confirms")

	employee := employeeActor(branchID)
	w = api.as(&employee).do(http.MethodPost, "/api/v1/distributions/"+d.ID.String()+"/confirm", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	confirmed := decodeData[invapp.DistributionResponse](t, w)
	assert.Equal(t, "RECEIVED", confirmed.Status)
	require.NotNil(t, confirmed.ReceivedBy)
	assert.Equal(t, employee.ID, *confirmed.ReceivedBy)

	w = api.do(http.MethodPost, "/api/v1/distributions/"+d.ID.String()+"/confirm", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, dto.ErrCodeAlreadyConfirmed, decodeErrorInfo(t, w).Code)

	assert.Equal(t, int64(300), api.branchQty(branchID, productID))
}

func TestDistributionHandler_InsufficientWarehouse(t *testing.T) {
	api := newTestAPI(t)
	productID := api.createProduct("Oud Wood", 100, 250)
	owner := ownerActor()

	w := api.as(&owner).do(http.MethodPost, "/api/v1/distributions", invapp.DistributeRequest{
		BranchID: uuid.New(), ProductID: productID, UnitQuantity: 3, UnitVolumeMl: 100,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	info := decodeErrorInfo(t, w)
	assert.Equal(t, dto.ErrCodeInsufficientGlobalStock, info.Code)
	assert.Contains(t, info.Message, "Oud Wood")

	w = api.do(http.MethodGet, "/api/v1/stock/global/"+productID.String(), nil)
	assert.Equal(t, int64(250), decodeData[invapp.GlobalStockResponse](t, w).QuantityMl)
}

func TestDistributionHandler_ListAndGetAreScoped(t *testing.T) {
	api := newTestAPI(t)
	productID := api.createProduct("Oud Wood", 100, 1000)
	branchA, branchB := uuid.New(), uuid.New()
	owner := ownerActor()
	api.as(&owner)

	var ids []uuid.UUID
	for _, branchID := range []uuid.UUID{branchA, branchB} {
		w := api.do(http.MethodPost, "/api/v1/distributions", invapp.DistributeRequest{
			BranchID: branchID, ProductID: productID, UnitQuantity: 1, UnitVolumeMl: 100,
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		ids = append(ids, decodeData[invapp.DistributionResponse](t, w).ID)
	}

	w := api.do(http.MethodGet, "/api/v1/distributions?status=PENDING", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeData[[]invapp.DistributionResponse](t, w), 2)

	w = api.do(http.MethodGet, "/api/v1/distributions?status=RECEIVED", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decodeData[[]invapp.DistributionResponse](t, w))

	w = api.do(http.MethodGet, "/api/v1/distributions?status=LOST", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	employee := employeeActor(branchA)
	api.as(&employee)

	w = api.do(http.MethodGet, "/api/v1/distributions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	rows := decodeData[[]invapp.DistributionResponse](t, w)
	require.Len(t, rows, 1)
	assert.Equal(t, branchA, rows[0].BranchID)

	w = api.do(http.MethodGet, "/api/v1/distributions/"+ids[0].String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/api/v1/distributions/"+ids[1].String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code, "another branch's distribution is not disclosed")

	customer := customerActor()
	w = api.as(&customer).do(http.MethodGet, "/api/v1/distributions", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
