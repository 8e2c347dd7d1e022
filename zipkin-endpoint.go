package zipkintracer

import (
	"encoding/binary"
	"net"

	zipkin "github.com/openzipkin/zipkin-go"

	"github.com/openzipkin-contrib/zipkintracer-thrift/thrift/gen-go/zipkincore"
)

// MakeEndpoint takes the hostport and service name that represent this Zipkin
// service, and returns an endpoint that's embedded into the Zipkin core Span
// type. It will return a nil endpoint if the input parameters are malformed.
func MakeEndpoint(hostport, serviceName string) *zipkincore.Endpoint {
	ep, err := zipkin.NewEndpoint(serviceName, hostport)
	if err != nil || ep == nil {
		return nil
	}
	if ep.IPv4 == nil && ep.IPv6 == nil {
		return nil
	}
	return NewEndpoint(ep.IPv4, ep.Port, serviceName, ep.IPv6)
}

// NewEndpoint builds an endpoint from explicit parts. A nil ipv4 is coded as
// 0 (none found) and a nil ipv6 is left unset.
func NewEndpoint(ipv4 net.IP, port uint16, serviceName string, ipv6 net.IP) *zipkincore.Endpoint {
	endpoint := zipkincore.NewEndpoint()
	if addr := ipv4.To4(); addr != nil {
		endpoint.Ipv4 = int32(binary.BigEndian.Uint32(addr))
	}
	if addr := ipv6.To16(); addr != nil && ipv6.To4() == nil {
		endpoint.Ipv6 = []byte(addr)
	}
	endpoint.Port = int16(port)
	endpoint.ServiceName = serviceName
	return endpoint
}
