package envelope

// Resource paths on the ingestion service.
const (
	PathLogin        = "/login"
	PathLogout       = "/logout"
	PathTrack        = "/track"
	PathAccount      = "/account"
	PathUser         = "/user"
	PathFeature      = "/feature"
	PathSubscription = "/subscription"
	PathInvoice      = "/invoice"
)

// Route returns the resource path an envelope is posted to. Unknown types
// go to the generic track path.
func Route(e Envelope) string {
	switch e.Type() {
	case TypeTrack:
		switch e.Event() {
		case EventLogin:
			return PathLogin
		case EventLogout:
			return PathLogout
		}
		return PathTrack
	case TypeAccount:
		return PathAccount
	case TypeUser:
		return PathUser
	case TypeFeature:
		return PathFeature
	case TypeSubscription:
		return PathSubscription
	case TypeInvoice:
		return PathInvoice
	default:
		return PathTrack
	}
}
