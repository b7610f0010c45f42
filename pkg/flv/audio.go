package flv

import "fmt"

/*
 * SoundFormat: UB[4]
 * 0 = Linear PCM, platform endian
 * 1 = ADPCM
 * 2 = MP3
 * 3 = Linear PCM, little endian
 * 4 = Nellymoser 16-kHZ mono
 * 5 = Nellymoser 8-kHZ mono
 * 6 = Nellymoser
 * 7 = G.711 A-law logarithmic PCM
 * 8 = G.711 mu-law logarithmic PCM
 * 9 = reserved
 * 10 = AAC
 * 11 = Speex
 * 14 = MP3 8-kHZ
 * 15 = Device-specific sound
 */
type SoundFormat uint8

const (
	SoundLinearPCMPlatform SoundFormat = 0
	SoundADPCM             SoundFormat = 1
	SoundMP3               SoundFormat = 2
	SoundLinearPCMLE       SoundFormat = 3
	SoundNellymoser16kMono SoundFormat = 4
	SoundNellymoser8kMono  SoundFormat = 5
	SoundNellymoser        SoundFormat = 6
	SoundG711A             SoundFormat = 7
	SoundG711Mu            SoundFormat = 8
	SoundReserved          SoundFormat = 9
	SoundAAC               SoundFormat = 10
	SoundSpeex             SoundFormat = 11
	SoundMP38k             SoundFormat = 14
	SoundDeviceSpecific    SoundFormat = 15

	SoundUnknown SoundFormat = 0xff
)

var soundFormatNames = map[SoundFormat]string{
	SoundLinearPCMPlatform: "Linear PCM, platform endian",
	SoundADPCM:             "ADPCM",
	SoundMP3:               "MP3",
	SoundLinearPCMLE:       "Linear PCM, little endian",
	SoundNellymoser16kMono: "Nellymoser 16-kHz mono",
	SoundNellymoser8kMono:  "Nellymoser 8-kHz mono",
	SoundNellymoser:        "Nellymoser",
	SoundG711A:             "G.711 A-law logarithmic PCM",
	SoundG711Mu:            "G.711 mu-law logarithmic PCM",
	SoundReserved:          "reserved",
	SoundAAC:               "AAC",
	SoundSpeex:             "Speex",
	SoundMP38k:             "MP3 8-Khz",
	SoundDeviceSpecific:    "Device-specific sound",
}

func (f SoundFormat) String() string {
	if s, ok := soundFormatNames[f]; ok {
		return s
	}
	return "UNKNOWN"
}

/*
 * SoundRate: UB[2]
 * 0 = 5.5-kHz For AAC: always 3
 * 1 = 11-kHZ
 * 2 = 22-kHZ
 * 3 = 44-kHZ
 */
type SoundRate uint8

const (
	SoundRate5_5kHz SoundRate = iota
	SoundRate11kHz
	SoundRate22kHz
	SoundRate44kHz
	SoundRateUnknown
)

func (r SoundRate) String() string {
	switch r {
	case SoundRate5_5kHz:
		return "5.5-kHz"
	case SoundRate11kHz:
		return "11-kHz"
	case SoundRate22kHz:
		return "22-kHz"
	case SoundRate44kHz:
		return "44-kHz"
	default:
		return "UNKNOWN"
	}
}

/*
 * SoundSize: UB[1]
 * 0 = snd8Bit
 * 1 = snd16Bit
 */
type SoundSize uint8

const (
	SoundSize8Bit SoundSize = iota
	SoundSize16Bit
	SoundSizeUnknown
)

func (s SoundSize) String() string {
	switch s {
	case SoundSize8Bit:
		return "8Bit"
	case SoundSize16Bit:
		return "16Bit"
	default:
		return "UNKNOWN"
	}
}

/*
 * SoundType: UB[1]
 * 0 = sndMono
 * 1 = sndStereo
 */
type SoundType uint8

const (
	SoundMono SoundType = iota
	SoundStereo
	SoundTypeUnknown
)

func (t SoundType) String() string {
	switch t {
	case SoundMono:
		return "Mono"
	case SoundStereo:
		return "Stereo"
	default:
		return "UNKNOWN"
	}
}

type AACPacketType uint8

const (
	AACSequenceHeader AACPacketType = 0
	AACRaw            AACPacketType = 1
)

func (t AACPacketType) String() string {
	switch t {
	case AACSequenceHeader:
		return "sequence header"
	case AACRaw:
		return "raw"
	default:
		return fmt.Sprintf("packet type %d", uint8(t))
	}
}

type AudioTagInfo struct {
	Codec      SoundFormat
	SampleRate SoundRate
	SampleSize SoundSize
	Channels   SoundType

	// only for AAC tags with a second payload byte
	HasAACPacketType bool
	AACPacketType    AACPacketType
}

// AnalyzeAudio decodes the first byte of an audio tag payload.
func AnalyzeAudio(flags byte) AudioTagInfo {
	info := AudioTagInfo{
		Codec:      SoundFormat(flags >> 4),
		SampleRate: SoundRate((flags >> 2) & 0x03),
		SampleSize: SoundSize((flags >> 1) & 0x01),
		Channels:   SoundType(flags & 0x01),
	}

	if _, ok := soundFormatNames[info.Codec]; !ok {
		info.Codec = SoundUnknown
	}

	return info
}

// AnalyzeAudioTag is AnalyzeAudio plus the AAC packet type. data must not be empty.
func AnalyzeAudioTag(data []byte) AudioTagInfo {
	info := AnalyzeAudio(data[0])
	if info.Codec == SoundAAC && len(data) > 1 {
		info.HasAACPacketType = true
		info.AACPacketType = AACPacketType(data[1])
	}

	return info
}

func (info AudioTagInfo) String() string {
	s := fmt.Sprintf("%s| %s| %s| %s", info.Codec, info.SampleRate, info.SampleSize, info.Channels)
	if info.HasAACPacketType {
		s += "| " + info.AACPacketType.String()
	}

	return s
}
