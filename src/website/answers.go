package website

import (
	"net/http"

	"git.campusqa.org/campusqa/campusqa/src/acceptance"
	"git.campusqa.org/campusqa/campusqa/src/models"
	"git.campusqa.org/campusqa/campusqa/src/qadata"
	"git.campusqa.org/campusqa/campusqa/src/qaerr"
	"git.campusqa.org/campusqa/campusqa/src/revisions"
)

// Loads the answer named by the path, and makes sure it belongs to the post
// named by the path.
func answerFromPath(c *RequestContext) (*models.Answer, error) {
	postID, err := postIDParam(c)
	if err != nil {
		return nil, err
	}
	answerID, ok := c.PathParamInt("answerid")
	if !ok {
		return nil, qaerr.ErrNotFound
	}

	answer, err := qadata.FetchAnswer(c, c.Conn, answerID)
	if err != nil {
		return nil, err
	}
	if answer.PostID != postID {
		return nil, qaerr.NotFound("answer", answerID)
	}
	return answer, nil
}

func AnswerCreate(c *RequestContext) ResponseData {
	postID, err := postIDParam(c)
	if err != nil {
		return FourOhFour(c)
	}

	var payload answerPayload
	if err := decodePayload(c, &payload); err != nil {
		return c.ErrorResponse(err)
	}

	answer, err := qadata.CreateAnswer(c, c.Conn, c.Moderator, c.CurrentUser, postID, payload.Body)
	if err != nil {
		return c.ErrorResponse(err)
	}

	return JsonResponse(c, http.StatusCreated, answerToJSON(answer, nil))
}

func AnswerEdit(c *RequestContext) ResponseData {
	existing, err := answerFromPath(c)
	if err != nil {
		return c.ErrorResponse(err)
	}

	var payload answerPayload
	if err := decodePayload(c, &payload); err != nil {
		return c.ErrorResponse(err)
	}

	answer, outcome, err := qadata.EditAnswer(c, c.Conn, c.Moderator, c.CurrentUser, existing.ID, payload.Body)
	if err != nil {
		return c.ErrorResponse(err)
	}

	type editJSON struct {
		answerJSON
		Revision revisions.Outcome `json:"revision"`
	}
	return JsonResponse(c, http.StatusOK, editJSON{
		answerJSON: answerToJSON(answer, nil),
		Revision:   outcome,
	})
}

func AnswerDelete(c *RequestContext) ResponseData {
	answer, err := answerFromPath(c)
	if err != nil {
		return c.ErrorResponse(err)
	}

	reopened, err := qadata.DestroyAnswer(c, c.Conn, c.CurrentUser, answer.ID)
	if err != nil {
		return c.ErrorResponse(err)
	}

	return JsonResponse(c, http.StatusOK, map[string]any{
		"deleted":  answer.ID,
		"reopened": reopened,
	})
}

func AnswerAccept(c *RequestContext) ResponseData {
	postID, ok := c.PathParamInt("postid")
	if !ok {
		return FourOhFour(c)
	}
	answerID, ok := c.PathParamInt("answerid")
	if !ok {
		return FourOhFour(c)
	}

	post, err := acceptance.Accept(c, c.Conn, postID, answerID, c.CurrentUser.ID)
	if err != nil {
		return c.ErrorResponse(err)
	}

	return JsonResponse(c, http.StatusOK, postToJSON(post))
}

func AnswerRedaction(c *RequestContext) ResponseData {
	existing, err := answerFromPath(c)
	if err != nil {
		return c.ErrorResponse(err)
	}

	var payload redactionPayload
	if err := decodePayload(c, &payload); err != nil {
		return c.ErrorResponse(err)
	}

	answer, err := qadata.SetRedaction(c, c.Conn, c.CurrentUser, existing.ID,
		models.RedactionState(payload.RedactionState), payload.RedactedBody)
	if err != nil {
		return c.ErrorResponse(err)
	}

	return JsonResponse(c, http.StatusOK, answerToJSON(answer, nil))
}

// Revisions hold earlier bodies, including text that may since have been
// redacted, so only the author and moderators may read them.
func AnswerRevisions(c *RequestContext) ResponseData {
	answer, err := answerFromPath(c)
	if err != nil {
		return c.ErrorResponse(err)
	}
	if answer.UserID != c.CurrentUser.ID && !c.CurrentUser.IsModerator {
		return c.ErrorResponse(qaerr.ErrForbidden)
	}

	revs, err := revisions.ListRevisions(c, c.Conn, answer.ID)
	if err != nil {
		return c.ErrorResponse(err)
	}

	res := make([]revisionJSON, 0, len(revs))
	for _, rev := range revs {
		res = append(res, revisionToJSON(rev))
	}
	return JsonResponse(c, http.StatusOK, res)
}
