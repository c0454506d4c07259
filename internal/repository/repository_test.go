package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/issue-tracker/internal/models"
	"github.com/yukikurage/issue-tracker/internal/testutil"
	"github.com/yukikurage/issue-tracker/internal/utils"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type RepositoryTestSuite struct {
	suite.Suite
	db       *gorm.DB
	issues   IssueRepository
	comments CommentRepository
	persons  PersonRepository
}

func (suite *RepositoryTestSuite) SetupTest() {
	suite.db = testutil.NewDB(suite.T())
	suite.issues = NewIssueRepository(suite.db)
	suite.comments = NewCommentRepository(suite.db)
	suite.persons = NewPersonRepository(suite.db)
}

func (suite *RepositoryTestSuite) page() utils.PaginationParams {
	return utils.PaginationParams{Page: 1, Limit: 50}
}

func (suite *RepositoryTestSuite) TestIssueList_Order() {
	p := testutil.CreatePerson(suite.T(), suite.db, "Ada", "Lovelace", "ada@example.com", false)
	testutil.CreateIssue(suite.T(), suite.db, "low b", "Beta", models.PriorityLow, p.ID)
	testutil.CreateIssue(suite.T(), suite.db, "low a", "Alpha", models.PriorityLow, p.ID)
	testutil.CreateIssue(suite.T(), suite.db, "high a", "Alpha", models.PriorityHigh, p.ID)
	testutil.CreateIssue(suite.T(), suite.db, "medium a", "Alpha", models.PriorityMedium, p.ID)

	issues, total, err := suite.issues.List(suite.page())
	suite.Require().NoError(err)
	suite.Equal(int64(4), total)

	var got []string
	for _, i := range issues {
		got = append(got, i.ShortDescription)
	}
	suite.Equal([]string{"high a", "medium a", "low a", "low b"}, got)
	suite.Require().NotNil(issues[0].Assignee)
	suite.Equal("Ada Lovelace", issues[0].Assignee.FullName())
}

func (suite *RepositoryTestSuite) TestIssueList_OrphanedAssignee() {
	issue := testutil.CreateIssue(suite.T(), suite.db, "orphan", "Alpha", models.PriorityLow, 999)

	issues, _, err := suite.issues.List(suite.page())
	suite.Require().NoError(err)
	suite.Require().Len(issues, 1)
	suite.Equal(issue.ID, issues[0].ID)
	suite.Nil(issues[0].Assignee)
}

func (suite *RepositoryTestSuite) TestIssueDelete_RemovesComments() {
	p := testutil.CreatePerson(suite.T(), suite.db, "Ada", "Lovelace", "ada@example.com", false)
	keep := testutil.CreateIssue(suite.T(), suite.db, "keep", "Alpha", models.PriorityLow, p.ID)
	drop := testutil.CreateIssue(suite.T(), suite.db, "drop", "Alpha", models.PriorityLow, p.ID)
	testutil.CreateComment(suite.T(), suite.db, drop.ID, p.ID, "goes", testutil.Date(2024, time.April, 1))
	testutil.CreateComment(suite.T(), suite.db, keep.ID, p.ID, "stays", testutil.Date(2024, time.April, 1))

	suite.Require().NoError(suite.issues.Delete(drop.ID))

	_, err := suite.issues.FindByID(drop.ID)
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	left, err := suite.comments.ListByIssue(keep.ID)
	suite.Require().NoError(err)
	suite.Len(left, 1)

	gone, err := suite.comments.ListByIssue(drop.ID)
	suite.Require().NoError(err)
	suite.Empty(gone)

	suite.ErrorIs(suite.issues.Delete(drop.ID), gorm.ErrRecordNotFound)
}

func (suite *RepositoryTestSuite) TestIssueUpdate_KeepsRelationsUntouched() {
	p := testutil.CreatePerson(suite.T(), suite.db, "Ada", "Lovelace", "ada@example.com", false)
	issue := testutil.CreateIssue(suite.T(), suite.db, "before", "Alpha", models.PriorityLow, p.ID)

	loaded, err := suite.issues.FindByID(issue.ID, "Assignee")
	suite.Require().NoError(err)
	loaded.ShortDescription = "after"
	loaded.Assignee.FirstName = "Changed"
	suite.Require().NoError(suite.issues.Update(loaded))

	reloaded, err := suite.issues.FindByID(issue.ID, "Assignee")
	suite.Require().NoError(err)
	suite.Equal("after", reloaded.ShortDescription)
	suite.Equal("Ada", reloaded.Assignee.FirstName)
}

func (suite *RepositoryTestSuite) TestCommentListByIssue_NewestFirstWithAuthor() {
	p := testutil.CreatePerson(suite.T(), suite.db, "Ada", "Lovelace", "ada@example.com", false)
	issue := testutil.CreateIssue(suite.T(), suite.db, "issue", "Alpha", models.PriorityLow, p.ID)
	testutil.CreateComment(suite.T(), suite.db, issue.ID, p.ID, "older", testutil.Date(2024, time.April, 1))
	testutil.CreateComment(suite.T(), suite.db, issue.ID, p.ID, "newer", testutil.Date(2024, time.April, 2))
	testutil.CreateComment(suite.T(), suite.db, issue.ID, 999, "orphan", testutil.Date(2024, time.March, 1))

	comments, err := suite.comments.ListByIssue(issue.ID)
	suite.Require().NoError(err)
	suite.Require().Len(comments, 3)
	suite.Equal("newer", comments[0].ShortComment)
	suite.Equal("older", comments[1].ShortComment)
	suite.Equal("Ada Lovelace", comments[0].Author.FullName())
	suite.Nil(comments[2].Author)
}

func (suite *RepositoryTestSuite) TestCommentList_PreloadsIssue() {
	p := testutil.CreatePerson(suite.T(), suite.db, "Ada", "Lovelace", "ada@example.com", false)
	issue := testutil.CreateIssue(suite.T(), suite.db, "parent", "Alpha", models.PriorityLow, p.ID)
	testutil.CreateComment(suite.T(), suite.db, issue.ID, p.ID, "hello", testutil.Date(2024, time.April, 1))

	comments, total, err := suite.comments.List(suite.page())
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().NotNil(comments[0].Issue)
	suite.Equal("parent", comments[0].Issue.ShortDescription)
}

func (suite *RepositoryTestSuite) TestPersonQueries() {
	testutil.CreatePerson(suite.T(), suite.db, "Zed", "Adams", "zed@example.com", false)
	ada := testutil.CreatePerson(suite.T(), suite.db, "Ada", "Lovelace", "ada@example.com", true)

	found, err := suite.persons.FindByEmail("ada@example.com")
	suite.Require().NoError(err)
	suite.Equal(ada.ID, found.ID)
	suite.True(found.Admin)

	_, err = suite.persons.FindByEmail("nobody@example.com")
	suite.ErrorIs(err, gorm.ErrRecordNotFound)

	page, total, err := suite.persons.List(suite.page())
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)
	suite.Equal("Adams", page[0].LastName)

	all, err := suite.persons.ListAll()
	suite.Require().NoError(err)
	suite.Equal("Ada", all[0].FirstName)

	exists, err := suite.persons.Exists(ada.ID)
	suite.Require().NoError(err)
	suite.True(exists)

	count, err := suite.persons.Count()
	suite.Require().NoError(err)
	suite.Equal(int64(2), count)

	suite.Require().NoError(suite.persons.Delete(ada.ID))
	exists, err = suite.persons.Exists(ada.ID)
	suite.Require().NoError(err)
	suite.False(exists)
}

func (suite *RepositoryTestSuite) TestPersonCreate_DuplicateEmail() {
	testutil.CreatePerson(suite.T(), suite.db, "Ada", "Lovelace", "ada@example.com", false)

	err := suite.persons.Create(&models.Person{
		FirstName: "Other", LastName: "Ada", Email: "ada@example.com",
		PasswordHash: "x", PasswordSalt: "y",
	})
	suite.Error(err)
}

func TestRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(RepositoryTestSuite))
}

func TestIssueDelete_RollsBackOnFailure(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `comment`").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM `issue`").WillReturnError(errors.New("lock wait timeout"))
	mock.ExpectRollback()

	err = NewIssueRepository(db).Delete(42)
	if err == nil || err.Error() != "lock wait timeout" {
		t.Fatalf("expected lock wait timeout, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
