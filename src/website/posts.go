package website

import (
	"errors"
	"net/http"

	"git.campusqa.org/campusqa/campusqa/src/acceptance"
	"git.campusqa.org/campusqa/campusqa/src/db"
	"git.campusqa.org/campusqa/campusqa/src/oops"
	"git.campusqa.org/campusqa/campusqa/src/qadata"
	"git.campusqa.org/campusqa/campusqa/src/qaerr"
	"git.campusqa.org/campusqa/campusqa/src/votes"
)

func postIDParam(c *RequestContext) (int, error) {
	id, ok := c.PathParamInt("postid")
	if !ok {
		return 0, qaerr.ErrNotFound
	}
	return id, nil
}

func PostShow(c *RequestContext) ResponseData {
	postID, err := postIDParam(c)
	if err != nil {
		return FourOhFour(c)
	}

	post, err := qadata.FetchPost(c, c.Conn, c.CurrentUser, postID)
	if err != nil {
		return c.ErrorResponse(err)
	}

	answers, err := qadata.FetchAnswersForPost(c, c.Conn, c.CurrentUser, post.ID)
	if err != nil {
		return c.ErrorResponse(err)
	}

	tally, err := votes.TallyFor(c, c.Conn, post.ID)
	if err != nil {
		return c.ErrorResponse(err)
	}

	res := postToJSON(post)
	res.Votes = &tally
	res.Answers = make([]answerJSON, 0, len(answers))
	for _, answer := range answers {
		res.Answers = append(res.Answers, answerToJSON(answer, post))
	}

	if c.CurrentUser != nil {
		like, err := votes.FindVote(c, c.Conn, post.ID, c.CurrentUser.ID)
		if err == nil {
			myVote := string(like.VoteType)
			res.MyVote = &myVote
		} else if !errors.Is(err, db.NotFound) {
			return c.ErrorResponse(oops.New(err, "failed to load current user's vote"))
		}
	}

	return JsonResponse(c, http.StatusOK, res)
}

func PostCreate(c *RequestContext) ResponseData {
	var payload postPayload
	if err := decodePayload(c, &payload); err != nil {
		return c.ErrorResponse(err)
	}

	post, err := qadata.CreatePost(c, c.Conn, c.Moderator, c.CurrentUser, payload.Title, payload.Body)
	if err != nil {
		return c.ErrorResponse(err)
	}

	view := postToJSON(post)
	res := JsonResponse(c, http.StatusCreated, view)
	res.Header().Set("Location", view.Url)
	return res
}

func PostUnaccept(c *RequestContext) ResponseData {
	postID, err := postIDParam(c)
	if err != nil {
		return FourOhFour(c)
	}

	post, err := acceptance.Unaccept(c, c.Conn, postID, c.CurrentUser.ID)
	if err != nil {
		return c.ErrorResponse(err)
	}

	return JsonResponse(c, http.StatusOK, postToJSON(post))
}
