package handler

import "github.com/aws/aws-lambda-go/events"

// callerID extracts the authenticated subject from the request authorizer
// claims. Empty means the caller is unauthenticated; the usecases reject
// that before any side effect.
func callerID(event events.APIGatewayProxyRequest) string {
	auth := event.RequestContext.Authorizer
	if auth == nil {
		return ""
	}
	claims, ok := auth["claims"].(map[string]interface{})
	if !ok {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}
