/*
Package model holds the Zipkin trace identifier and span context types shared
by the propagation codecs, the tracer and the span encoder.
*/
package model
