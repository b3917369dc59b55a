// Package edlsim provides a simulated Qualcomm EDL target for tests and
// examples. It speaks Sahara until the programmer image is uploaded and then
// answers Firehose commands, recording everything it receives.
package edlsim
