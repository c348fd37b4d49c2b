package api

// Service accessors group Client operations by endpoint family.
// Each service embeds *Client so they share one connection pool.

type EventsService struct{ *Client }

type ScoresService struct{ *Client }

type LabelsService struct{ *Client }

type DecisionsService struct{ *Client }

type WorkflowsService struct{ *Client }

type VerificationService struct{ *Client }

type MerchantsService struct{ *Client }

func (c *Client) Events() EventsService {
	return EventsService{c}
}

func (c *Client) Scores() ScoresService {
	return ScoresService{c}
}

func (c *Client) Labels() LabelsService {
	return LabelsService{c}
}

func (c *Client) Decisions() DecisionsService {
	return DecisionsService{c}
}

func (c *Client) Workflows() WorkflowsService {
	return WorkflowsService{c}
}

func (c *Client) Verification() VerificationService {
	return VerificationService{c}
}

func (c *Client) Merchants() MerchantsService {
	return MerchantsService{c}
}
