package syncgateway

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/checkmarble/form-designer/models"
)

func (suite *GatewayTestSuite) monitor(gateway *Gateway) *ConnectivityMonitor {
	m := NewConnectivityMonitor(gateway, gateway.deps.RemoteFormRepository, time.Minute)
	m.delay = time.Millisecond
	return m
}

func (suite *GatewayTestSuite) TestProbe_connected() {
	gateway := suite.makeGateway(suite.remote)
	suite.remote.On("Ping", mock.Anything).Return(nil)

	status := suite.monitor(gateway).Probe(suite.ctx)
	gateway.Wait()

	suite.Equal(models.ConnectionConnected, status)
	suite.Equal(models.ConnectionConnected, gateway.Status())
}

func (suite *GatewayTestSuite) TestProbe_retries_unreachable_remote() {
	gateway := suite.makeGateway(suite.remote)
	suite.remote.On("Ping", mock.Anything).Return(unreachable)

	status := suite.monitor(gateway).Probe(suite.ctx)

	suite.Equal(models.ConnectionDisconnected, status)
	suite.remote.AssertNumberOfCalls(suite.T(), "Ping", probeAttempts)
}

func (suite *GatewayTestSuite) TestProbe_transient_failure_then_success() {
	gateway := suite.makeGateway(suite.remote)
	suite.remote.On("Ping", mock.Anything).Return(serverError).Once()
	suite.remote.On("Ping", mock.Anything).Return(nil)

	status := suite.monitor(gateway).Probe(suite.ctx)
	gateway.Wait()

	suite.Equal(models.ConnectionConnected, status)
	suite.remote.AssertNumberOfCalls(suite.T(), "Ping", 2)
}

func (suite *GatewayTestSuite) TestProbe_rejected_is_not_retried() {
	gateway := suite.makeGateway(suite.remote)
	suite.remote.On("Ping", mock.Anything).Return(rejected)

	status := suite.monitor(gateway).Probe(suite.ctx)

	suite.Equal(models.ConnectionError, status)
	suite.remote.AssertNumberOfCalls(suite.T(), "Ping", 1)
}

func (suite *GatewayTestSuite) TestProbe_while_connected_drains_writes_queued_behind_a_replay() {
	gateway := suite.connectedGateway()
	gateway.isProcessing.Store(true)
	result, err := gateway.SaveForm(suite.ctx, userId, form("a"))
	suite.Require().NoError(err)
	suite.True(result.Queued)
	gateway.isProcessing.Store(false)

	suite.remote.On("Ping", mock.Anything).Return(nil)
	suite.remote.On("CreateForm", mock.Anything, formWithId("a")).Return(nil).Once()
	suite.remote.On("CreateForm", mock.Anything, formWithId("b")).Return(nil).Once()

	status := suite.monitor(gateway).Probe(suite.ctx)
	gateway.Wait()
	suite.Equal(models.ConnectionConnected, status)
	suite.Zero(gateway.QueueLength())

	result, err = gateway.SaveForm(suite.ctx, userId, form("b"))
	suite.Require().NoError(err)
	suite.True(result.Synced)
	suite.Zero(gateway.QueueLength())
	suite.remote.AssertExpectations(suite.T())
}

func (suite *GatewayTestSuite) TestProbe_while_connected_retries_a_rejected_write() {
	gateway := suite.connectedGateway()
	suite.remote.On("CreateForm", mock.Anything, formWithId("a")).Return(rejected).Once()
	suite.remote.On("CreateForm", mock.Anything, formWithId("a")).Return(nil).Once()
	suite.remote.On("CreateForm", mock.Anything, formWithId("b")).Return(nil).Once()
	suite.remote.On("Ping", mock.Anything).Return(nil)

	result, err := gateway.SaveForm(suite.ctx, userId, form("a"))
	suite.Require().NoError(err)
	suite.True(result.Queued)
	suite.Equal(models.ConnectionConnected, gateway.Status())

	suite.monitor(gateway).Probe(suite.ctx)
	gateway.Wait()
	suite.Zero(gateway.QueueLength())

	result, err = gateway.SaveForm(suite.ctx, userId, form("b"))
	suite.Require().NoError(err)
	suite.True(result.Synced)
	suite.remote.AssertExpectations(suite.T())
}

func (suite *GatewayTestSuite) TestRun_without_remote_store() {
	gateway := suite.makeGateway(nil)
	ctx, cancel := context.WithCancel(suite.ctx)
	done := make(chan error)

	go func() { done <- suite.monitor(gateway).Run(ctx) }()
	suite.Eventually(func() bool {
		return gateway.Status() == models.ConnectionOffline
	}, time.Second, 5*time.Millisecond)
	cancel()

	suite.NoError(<-done)
}
