// Package firehose implements the host side of the Qualcomm Firehose
// protocol spoken by a flash programmer after a Sahara upload.
//
// # Protocol Overview
//
// Commands and responses are small XML documents sent over USB bulk:
//
//	host:   <?xml version="1.0" ?><data><erase ... /></data>
//	target: <?xml version="1.0" encoding="UTF-8" ?><data><log value="..." /></data>
//	target: <?xml version="1.0" encoding="UTF-8" ?><data><response value="ACK" /></data>
//
// A target may send any number of <log> elements before the ACK or NAK that
// ends an exchange, and may pack several documents into one transfer.
// Channel.Execute handles both.
//
// # Command Builders
//
// The Build* functions produce the exact command text:
//
//	cmd := firehose.BuildConfigure(firehose.ConfigureParams{MaxTx: 8192, MaxRx: 4096})
//	cmd := firehose.BuildErase(directive)
//	cmd := firehose.BuildProgram(directive, int64(len(image)))
//
// # Raw Data
//
// A program command is followed by raw sector data, streamed with a
// Downloader in chunks no larger than the negotiated payload size. The final
// chunk is zero padded to the sector boundary. The target answers with a
// single ACK once all data has been written:
//
//	if _, err := ch.Execute(ctx, firehose.BuildProgram(d, size), transport.PollUntilReady); err != nil {
//	    return err
//	}
//	if err := dl.Download(ctx, image, d.ProgramByteCount(size), nil); err != nil {
//	    return err
//	}
//	_, err := ch.Execute(ctx, "", transport.PollUntilReady)
package firehose
