package website

import (
	"net/http"

	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/votes"
)

func castVote(c *RequestContext, direction models.VoteType) ResponseData {
	postID, err := postIDParam(c)
	if err != nil {
		return FourOhFour(c)
	}

	result, err := votes.CastVote(c, c.Conn, postID, c.CurrentUser.ID, direction)
	if err != nil {
		return c.ErrorResponse(err)
	}

	var voteType *string
	if result.Like != nil {
		v := string(result.Like.VoteType)
		voteType = &v
	}
	return voteResponse(c, postID, string(result.Outcome), voteType)
}

func voteResponse(c *RequestContext, postID int, outcome string, voteType *string) ResponseData {
	tally, err := votes.TallyFor(c, c.Conn, postID)
	if err != nil {
		return c.ErrorResponse(err)
	}

	return JsonResponse(c, http.StatusOK, voteJSON{
		Outcome:  outcome,
		VoteType: voteType,
		Votes:    tally,
	})
}

func PostUpvote(c *RequestContext) ResponseData {
	return castVote(c, models.VoteUp)
}

func PostDownvote(c *RequestContext) ResponseData {
	return castVote(c, models.VoteDown)
}

// POST /posts/{id}/likes with an optional vote_type, upvote when omitted.
func PostLikeCreate(c *RequestContext) ResponseData {
	var payload likePayload
	if err := decodePayload(c, &payload); err != nil {
		return c.ErrorResponse(err)
	}

	direction := models.VoteUp
	if payload.VoteType != "" {
		direction = models.VoteType(payload.VoteType)
	}
	return castVote(c, direction)
}

func PostLikeDelete(c *RequestContext) ResponseData {
	postID, err := postIDParam(c)
	if err != nil {
		return FourOhFour(c)
	}

	outcome, err := votes.RemoveVote(c, c.Conn, postID, c.CurrentUser.ID)
	if err != nil {
		return c.ErrorResponse(err)
	}

	return voteResponse(c, postID, string(outcome), nil)
}
