package deliveryworker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fooddelivery/internal/domain/deliveries"
	"fooddelivery/internal/geo"
	"fooddelivery/internal/orderapi"
	"fooddelivery/internal/shared/contracts"
	"fooddelivery/internal/shared/rabbitmq"
)

// passthroughUoW runs the function without a real transaction.
type passthroughUoW struct{}

func (passthroughUoW) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type repoMock struct{ mock.Mock }

func (m *repoMock) ExistsForOrder(ctx context.Context, orderID int64) (bool, error) {
	args := m.Called(ctx, orderID)
	return args.Bool(0), args.Error(1)
}

func (m *repoMock) Create(ctx context.Context, d *deliveries.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *repoMock) UpdateStatus(ctx context.Context, id int64, status deliveries.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type readerMock struct{ mock.Mock }

func (m *readerMock) Order(ctx context.Context, orderID int64) (orderapi.OrderInfo, error) {
	args := m.Called(ctx, orderID)
	return args.Get(0).(orderapi.OrderInfo), args.Error(1)
}

func (m *readerMock) RestaurantAddresses(ctx context.Context, restaurantID int64) ([]orderapi.Address, error) {
	args := m.Called(ctx, restaurantID)
	return args.Get(0).([]orderapi.Address), args.Error(1)
}

func (m *readerMock) UserAddresses(ctx context.Context, userID int64) ([]orderapi.Address, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]orderapi.Address), args.Error(1)
}

type estimatorMock struct{ mock.Mock }

func (m *estimatorMock) Estimate(ctx context.Context, origin, destination string) geo.Estimate {
	args := m.Called(ctx, origin, destination)
	return args.Get(0).(geo.Estimate)
}

type publisherMock struct{ mock.Mock }

func (m *publisherMock) Publish(queue string, body []byte, persistent bool) error {
	args := m.Called(queue, body, persistent)
	return args.Error(0)
}

var (
	restaurantAddr = orderapi.Address{Street: "Długa", HouseNumber: "7", City: "Kraków", ZipCode: "31-146", Country: "Poland"}
	customerAddr   = orderapi.Address{Street: "Złota", HouseNumber: "44", City: "Warszawa", ZipCode: "00-120"}
)

func newProcessor(repo *repoMock, reader *readerMock, est *estimatorMock, pub *publisherMock) *Processor {
	return NewProcessor(passthroughUoW{}, repo, reader, est, pub, zap.NewNop())
}

func TestProcessSkipsExistingDelivery(t *testing.T) {
	repo := &repoMock{}
	reader := &readerMock{}
	est := &estimatorMock{}
	pub := &publisherMock{}

	repo.On("ExistsForOrder", mock.Anything, int64(42)).Return(true, nil)

	err := newProcessor(repo, reader, est, pub).Process(context.Background(), 42)
	require.NoError(t, err)

	reader.AssertNotCalled(t, "Order", mock.Anything, mock.Anything)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessHappyPath(t *testing.T) {
	repo := &repoMock{}
	reader := &readerMock{}
	est := &estimatorMock{}
	pub := &publisherMock{}

	repo.On("ExistsForOrder", mock.Anything, int64(42)).Return(false, nil)
	reader.On("Order", mock.Anything, int64(42)).
		Return(orderapi.OrderInfo{ID: 42, RestaurantID: 7, UserID: 13}, nil)
	reader.On("RestaurantAddresses", mock.Anything, int64(7)).
		Return([]orderapi.Address{restaurantAddr}, nil)
	reader.On("UserAddresses", mock.Anything, int64(13)).
		Return([]orderapi.Address{customerAddr}, nil)

	origin := orderapi.FormatAddress(restaurantAddr)
	destination := orderapi.FormatAddress(customerAddr)
	estimate := geo.Simulate(origin, destination)
	est.On("Estimate", mock.Anything, origin, destination).Return(estimate)

	repo.On("Create", mock.Anything, mock.MatchedBy(func(d *deliveries.Delivery) bool {
		return d.OrderID == 42 &&
			d.Status == deliveries.StatusPending &&
			d.StartLocation == origin &&
			d.EndLocation == destination &&
			d.DistanceKm != nil && *d.DistanceKm == estimate.DistanceKm &&
			d.EstimatedSeconds != nil && *d.EstimatedSeconds == estimate.DurationSeconds
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*deliveries.Delivery).ID = 99
	}).Return(nil)
	repo.On("UpdateStatus", mock.Anything, int64(99), deliveries.StatusOnTheWay).Return(nil)

	pub.On("Publish", rabbitmq.QueueDeliveryStatus, mock.Anything, true).Return(nil)

	err := newProcessor(repo, reader, est, pub).Process(context.Background(), 42)
	require.NoError(t, err)

	repo.AssertExpectations(t)
	pub.AssertExpectations(t)

	body := pub.Calls[0].Arguments.Get(1).([]byte)
	var msg contracts.DeliveryStatusMessage
	require.NoError(t, json.Unmarshal(body, &msg))
	assert.Equal(t, int64(42), msg.OrderID)
	assert.Equal(t, int64(99), msg.DeliveryID)
	assert.Equal(t, "in_progress", msg.Status)
	require.NotNil(t, msg.DistanceKm)
	assert.Equal(t, estimate.DistanceKm, *msg.DistanceKm)
	assert.GreaterOrEqual(t, *msg.DistanceKm, 2.0)
	assert.LessOrEqual(t, *msg.DistanceKm, 22.0)
}

func TestProcessAbortsWhenRestaurantHasNoAddresses(t *testing.T) {
	repo := &repoMock{}
	reader := &readerMock{}
	est := &estimatorMock{}
	pub := &publisherMock{}

	repo.On("ExistsForOrder", mock.Anything, int64(42)).Return(false, nil)
	reader.On("Order", mock.Anything, int64(42)).
		Return(orderapi.OrderInfo{ID: 42, RestaurantID: 7, UserID: 13}, nil)
	reader.On("RestaurantAddresses", mock.Anything, int64(7)).
		Return([]orderapi.Address{}, nil)

	err := newProcessor(repo, reader, est, pub).Process(context.Background(), 42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no addresses")

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessAbortsWhenOrderFetchFails(t *testing.T) {
	repo := &repoMock{}
	reader := &readerMock{}
	est := &estimatorMock{}
	pub := &publisherMock{}

	repo.On("ExistsForOrder", mock.Anything, int64(42)).Return(false, nil)
	reader.On("Order", mock.Anything, int64(42)).
		Return(orderapi.OrderInfo{}, errors.New("connection refused"))

	err := newProcessor(repo, reader, est, pub).Process(context.Background(), 42)
	require.Error(t, err)

	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcessStopsWhenCreateFails(t *testing.T) {
	repo := &repoMock{}
	reader := &readerMock{}
	est := &estimatorMock{}
	pub := &publisherMock{}

	repo.On("ExistsForOrder", mock.Anything, int64(42)).Return(false, nil)
	reader.On("Order", mock.Anything, int64(42)).
		Return(orderapi.OrderInfo{ID: 42, RestaurantID: 7, UserID: 13}, nil)
	reader.On("RestaurantAddresses", mock.Anything, int64(7)).
		Return([]orderapi.Address{restaurantAddr}, nil)
	reader.On("UserAddresses", mock.Anything, int64(13)).
		Return([]orderapi.Address{customerAddr}, nil)
	est.On("Estimate", mock.Anything, mock.Anything, mock.Anything).
		Return(geo.Estimate{DistanceKm: 5, DurationSeconds: 600, Provenance: geo.ProvenanceSimulated})
	repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("unique violation"))

	err := newProcessor(repo, reader, est, pub).Process(context.Background(), 42)
	require.Error(t, err)

	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}
