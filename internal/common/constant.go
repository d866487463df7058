package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// DefaultDescriptorLength is the length of descriptors produced by the
// common 128-dimensional face embedding models.
const DefaultDescriptorLength = 128

// DefaultMatchThreshold is the Euclidean distance below which two
// descriptors are considered the same identity.
const DefaultMatchThreshold = 0.6

// NotRecognizedMessage is reported to clients when a login descriptor
// matched nobody.
const NotRecognizedMessage = "face not recognized"
