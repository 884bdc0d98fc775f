package resource

import (
	"context"
	"net/http"

	"storefront-client/internal/model"
)

// Finance is the finance department client.
type Finance struct {
	r Requester
}

func NewFinance(r Requester) *Finance {
	return &Finance{r: r}
}

func (c *Finance) FetchIssues(ctx context.Context) ([]model.FinanceIssue, error) {
	return fetchList[model.FinanceIssue](ctx, c.r, http.MethodGet, "/finance/issues", nil, "Failed to fetch issues")
}

func (c *Finance) FetchIssueDetail(ctx context.Context, id model.ID) (*model.FinanceIssue, error) {
	const failure = "Failed to fetch issue detail"
	if err := requireID("issue_id", id); err != nil {
		return nil, model.WrapOperation(failure, err)
	}
	return fetchItem[model.FinanceIssue](ctx, c.r, http.MethodGet, "/finance/issues/"+escape(id), nil, failure)
}

func (c *Finance) CreateIssue(ctx context.Context, in model.FinanceIssueInput) (*model.FinanceIssue, error) {
	const failure = "Failed to create issue"
	if in.Description == "" {
		return nil, model.WrapOperation(failure, model.NewValidationError("description", "required"))
	}
	return fetchItem[model.FinanceIssue](ctx, c.r, http.MethodPost, "/finance/issues", in, failure)
}

func (c *Finance) UpdateIssue(ctx context.Context, id model.ID, in model.FinanceIssueInput) (*model.FinanceIssue, error) {
	const failure = "Failed to update issue"
	if err := requireID("issue_id", id); err != nil {
		return nil, model.WrapOperation(failure, err)
	}
	return fetchItem[model.FinanceIssue](ctx, c.r, http.MethodPut, "/finance/issues/"+escape(id), in, failure)
}

func (c *Finance) DeleteIssue(ctx context.Context, id model.ID) error {
	const failure = "Failed to delete issue"
	if err := requireID("issue_id", id); err != nil {
		return model.WrapOperation(failure, err)
	}
	return send(ctx, c.r, http.MethodDelete, "/finance/issues/"+escape(id), nil, failure)
}

func (c *Finance) FetchReimbursements(ctx context.Context) ([]model.Reimbursement, error) {
	return fetchList[model.Reimbursement](ctx, c.r, http.MethodGet, "/finance/reimbursements", nil, "Failed to fetch reimbursements")
}

func (c *Finance) FetchReimbursementDetail(ctx context.Context, id model.ID) (*model.Reimbursement, error) {
	const failure = "Failed to fetch reimbursement detail"
	if err := requireID("reimbursement_id", id); err != nil {
		return nil, model.WrapOperation(failure, err)
	}
	return fetchItem[model.Reimbursement](ctx, c.r, http.MethodGet, "/finance/reimbursements/"+escape(id), nil, failure)
}

// UpdateReimbursement requests a status transition; the server validates it.
func (c *Finance) UpdateReimbursement(ctx context.Context, id model.ID, in model.ReimbursementUpdate) (*model.Reimbursement, error) {
	const failure = "Failed to update reimbursement"
	if err := requireID("reimbursement_id", id); err != nil {
		return nil, model.WrapOperation(failure, err)
	}
	if in.Status == "" {
		return nil, model.WrapOperation(failure, model.NewValidationError("status", "required"))
	}
	return fetchItem[model.Reimbursement](ctx, c.r, http.MethodPut, "/finance/reimbursements/"+escape(id), in, failure)
}
