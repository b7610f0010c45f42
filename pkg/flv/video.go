package flv

import "fmt"

/*
 * 1: keyframe (for AVC, a seekable frame)
 * 2: inter frame (for AVC, a non- seekable frame)
 * 3: disposable inter frame (H.263 only)
 * 4: generated keyframe (reserved for server use only)
 * 5: video info/command frame
 */
type FrameType uint8

const (
	FrameUnknown FrameType = iota
	FrameKey
	FrameInter
	FrameDisposableInter
	FrameGeneratedKey
	FrameInfoCommand
)

func (t FrameType) String() string {
	switch t {
	case FrameKey:
		return "key frame"
	case FrameInter:
		return "inter frame"
	case FrameDisposableInter:
		return "disposable inter frame"
	case FrameGeneratedKey:
		return "generated keyframe"
	case FrameInfoCommand:
		return "video info/command frame"
	default:
		return "UNKNOWN"
	}
}

/*
 * 1: JPEG (currently unused)
 * 2: Sorenson H.263
 * 3: Screen video
 * 4: On2 VP6
 * 5: On2 VP6 with alpha channel
 * 6: Screen video version 2
 * 7: AVC (H.264)
 */
type VideoCodec uint8

const (
	VideoUnknown VideoCodec = iota
	VideoJPEG
	VideoSorensonH263
	VideoScreen
	VideoOn2VP6
	VideoOn2VP6Alpha
	VideoScreenV2
	VideoAVC
)

func (c VideoCodec) String() string {
	switch c {
	case VideoJPEG:
		return "JPEG (currently unused)"
	case VideoSorensonH263:
		return "Sorenson H.263"
	case VideoScreen:
		return "Screen video"
	case VideoOn2VP6:
		return "On2 VP6"
	case VideoOn2VP6Alpha:
		return "On2 VP6 with alpha channel"
	case VideoScreenV2:
		return "Screen video version 2"
	case VideoAVC:
		return "AVC"
	default:
		return "UNKNOWN"
	}
}

/*
 * 0: AVC sequence header
 * 1: AVC NALU
 * 2: AVC end of sequence (lower level NALU sequence ender is not required or supported)
 */
type AVCPacketType uint8

const (
	AVCSequenceHeader AVCPacketType = 0
	AVCNALU           AVCPacketType = 1
	AVCEndOfSequence  AVCPacketType = 2
)

func (t AVCPacketType) String() string {
	switch t {
	case AVCSequenceHeader:
		return "sequence header"
	case AVCNALU:
		return "NALU"
	case AVCEndOfSequence:
		return "end of sequence"
	default:
		return fmt.Sprintf("packet type %d", uint8(t))
	}
}

type VideoTagInfo struct {
	FrameType FrameType
	Codec     VideoCodec

	// only for AVC tags carrying the 4 byte AVC header
	HasAVCHeader    bool
	AVCPacketType   AVCPacketType
	CompositionTime int32
}

// AnalyzeVideo decodes the first byte of a video tag payload.
func AnalyzeVideo(flags byte) VideoTagInfo {
	info := VideoTagInfo{
		FrameType: FrameType(flags >> 4),
		Codec:     VideoCodec(flags & 0x0f),
	}

	if info.FrameType > FrameInfoCommand {
		info.FrameType = FrameUnknown
	}
	if info.Codec > VideoAVC {
		info.Codec = VideoUnknown
	}

	return info
}

// AnalyzeVideoTag is AnalyzeVideo plus the AVC packet type and composition
// time. data must not be empty.
func AnalyzeVideoTag(data []byte) VideoTagInfo {
	info := AnalyzeVideo(data[0])
	if info.Codec == VideoAVC && len(data) >= 5 {
		info.HasAVCHeader = true
		info.AVCPacketType = AVCPacketType(data[1])

		// SI24
		cts := int32(DecodeBE(data[2:5]))
		if cts&0x800000 != 0 {
			cts -= 1 << 24
		}
		info.CompositionTime = cts
	}

	return info
}

func (info VideoTagInfo) String() string {
	s := fmt.Sprintf("%s | %s", info.FrameType, info.Codec)
	if info.HasAVCHeader {
		s += fmt.Sprintf(" | %s cts=%d", info.AVCPacketType, info.CompositionTime)
	}

	return s
}
