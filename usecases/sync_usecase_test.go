package usecases

import (
	"github.com/checkmarble/form-designer/models"
)

func (suite *DesignerUsecaseTestSuite) syncAs(creds models.Credentials) *SyncUsecase {
	withCreds := UsecasesWithCreds{Usecases: suite.usecases, Credentials: creds, Context: suite.ctx}
	usecase := withCreds.NewSyncUsecase()
	return &usecase
}

func (suite *DesignerUsecaseTestSuite) TestSync_status_without_remote_store() {
	status, err := suite.syncAs(viewer).Status(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(models.ConnectionOffline, status.Status)
	suite.Equal(0, status.QueueLength)

	suite.savedForm(builder, "form-1")

	status, err = suite.syncAs(viewer).Status(suite.ctx)
	suite.Require().NoError(err)
	suite.Equal(1, status.QueueLength)
}

func (suite *DesignerUsecaseTestSuite) TestSync_manage_requires_admin() {
	_, err := suite.syncAs(builder).SetStatus(suite.ctx, models.ConnectionDisconnected)
	suite.ErrorIs(err, models.ForbiddenError)
	_, err = suite.syncAs(builder).Replay(suite.ctx)
	suite.ErrorIs(err, models.ForbiddenError)

	status, err := suite.syncAs(admin).SetStatus(suite.ctx, models.ConnectionDisconnected)
	suite.Require().NoError(err)
	suite.Equal(models.ConnectionDisconnected, status.Status)
}

func (suite *DesignerUsecaseTestSuite) TestSubmitForm() {
	_, err := suite.syncAs(viewer).SubmitForm(suite.ctx, "missing", map[string]any{"a": 1})
	suite.ErrorIs(err, models.NotFoundError)

	suite.savedForm(builder, "form-1")
	submission, err := suite.syncAs(viewer).SubmitForm(suite.ctx, "form-1", map[string]any{"quantity": 3})
	suite.Require().NoError(err)
	suite.Equal(viewer.UserId, submission.SubmittedBy)

	_, err = suite.syncAs(viewer).ListSubmissions(suite.ctx, "form-1")
	suite.ErrorIs(err, models.ForbiddenError)

	submissions, err := suite.syncAs(builder).ListSubmissions(suite.ctx, "form-1")
	suite.Require().NoError(err)
	suite.Require().Len(submissions, 1)
	suite.Equal(submission.Id, submissions[0].Id)

	queue, err := suite.syncAs(admin).Queue(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(queue, 2)
	suite.Equal(models.SyncActionSaveSubmission, queue[1].Type)
}

func (suite *DesignerUsecaseTestSuite) TestLiveness() {
	liveness := suite.usecases.NewLivenessUsecase()
	suite.NoError(liveness.Liveness(suite.ctx))
}
