/*
NAME
  tables.go - constant tables for the Turing stream cipher.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package turing

// sbox is the cipher's fixed 8x8 S-box.
var sbox = [256]byte{
	0x61, 0x51, 0xeb, 0x19, 0xb9, 0x5d, 0x60, 0x38,
	0x7c, 0xb2, 0x06, 0x12, 0xc4, 0x5b, 0x16, 0x3b,
	0x2b, 0x18, 0x83, 0xb0, 0x7f, 0x75, 0xfa, 0xa0,
	0xe9, 0xdd, 0x6d, 0x7a, 0x6b, 0x68, 0x2d, 0x49,
	0x79, 0x36, 0x6c, 0xc0, 0x95, 0x08, 0x01, 0x1e,
	0xb5, 0x3d, 0x0e, 0x1d, 0xc7, 0xbe, 0x04, 0x70,
	0x45, 0x1c, 0xb7, 0x44, 0x3a, 0xf8, 0xf1, 0xb4,
	0xa7, 0xac, 0x37, 0x3f, 0x64, 0x13, 0x72, 0xfb,
	0xbf, 0x97, 0xb3, 0x35, 0xd9, 0x47, 0xef, 0xf6,
	0x0d, 0x65, 0xe6, 0x6e, 0x15, 0x8c, 0xba, 0x00,
	0x54, 0x7d, 0xd1, 0xa3, 0xd8, 0x8e, 0x26, 0xfe,
	0x28, 0x5c, 0x73, 0x56, 0xaf, 0x10, 0xe8, 0xd6,
	0xc8, 0xf5, 0xb6, 0x50, 0xe7, 0x5e, 0xe5, 0x9c,
	0xa1, 0x91, 0xb8, 0x76, 0x84, 0xe4, 0x4f, 0x9a,
	0x25, 0x31, 0xf0, 0x2c, 0x63, 0xbb, 0xcb, 0xee,
	0x42, 0x74, 0x66, 0x29, 0xdf, 0xd0, 0xc3, 0x21,
	0x4c, 0xc5, 0x43, 0xd4, 0x11, 0x8a, 0x3e, 0xa4,
	0x92, 0x67, 0x34, 0x88, 0x46, 0x3c, 0x62, 0x17,
	0x4e, 0xd3, 0x1a, 0x23, 0x09, 0xad, 0xcd, 0x53,
	0xf2, 0x1b, 0x2e, 0xea, 0x05, 0x9b, 0x03, 0xe0,
	0xe3, 0x5f, 0x0c, 0x20, 0xca, 0x77, 0xa5, 0x80,
	0x7b, 0xb1, 0xaa, 0x58, 0x59, 0xcf, 0x6f, 0x32,
	0x8d, 0xbd, 0x4d, 0xbc, 0xde, 0xf4, 0x7e, 0xf9,
	0x0b, 0xcc, 0x22, 0x98, 0x69, 0x52, 0xce, 0x02,
	0x4a, 0xe2, 0x24, 0xa2, 0xfd, 0xc9, 0x39, 0x81,
	0xff, 0xab, 0x2a, 0xda, 0xfc, 0x8f, 0x2f, 0x94,
	0x71, 0x33, 0xf3, 0x41, 0x40, 0xae, 0x86, 0xa8,
	0xe1, 0x96, 0x90, 0xf7, 0x93, 0x89, 0xdc, 0x4b,
	0x14, 0x87, 0xc1, 0x07, 0x57, 0x9f, 0x0f, 0x85,
	0x48, 0x30, 0x0a, 0xec, 0x1f, 0xd2, 0x6a, 0x78,
	0x55, 0x9e, 0xd7, 0xd5, 0x5a, 0xed, 0xdb, 0xa6,
	0x82, 0x99, 0x27, 0xa9, 0x8b, 0x9d, 0xc2, 0xc6,
}

// qbox is the cipher's fixed 8x32 S-box.
var qbox = [256]uint32{
	0x1faa1887, 0x4e5e435c, 0x9165c042, 0x250e6ef4,
	0x5957ee20, 0xd484fed3, 0xa666c502, 0x7e54e8ae,
	0xd12ee9d9, 0xfc1f38d4, 0x49829b5d, 0x1b5cdf3c,
	0x74864249, 0xda2e3963, 0x28f4429f, 0xc8432c35,
	0x4af40325, 0x9fc0dd70, 0xd8973ded, 0x1a02dc5e,
	0xcd175b42, 0xce4f4e5a, 0x28f9edfb, 0x0a2ab05b,
	0x25f9306d, 0xdfd4a186, 0x9a3df21d, 0x3c65cfe7,
	0x4333c083, 0x606257cf, 0x351a2dbc, 0x6820858b,
	0xd4653f80, 0x685e8cb1, 0x81a2e9d4, 0x8af1ee42,
	0x0d470572, 0x8199db88, 0xcd34abc9, 0x746f6ddf,
	0xd9479160, 0xa4dc37c4, 0xa005bfcc, 0x7db768ed,
	0x1aee2d21, 0x071fdd70, 0x2a2924fd, 0xc6497aa4,
	0xe76b97d8, 0x85e5ddaa, 0x13806cc0, 0x79b9d2b3,
	0x55abd9d8, 0xa1341007, 0x19e5d4bd, 0x82d6b8c8,
	0x47a808f1, 0x4469c861, 0xb753f6aa, 0xdc3cf2f9,
	0xa79cc14e, 0x40184ee3, 0x7a90d6ca, 0xa8ab189e,
	0x1b73a6f6, 0x450b48cb, 0x71f9bd7f, 0x038f2f54,
	0xbc552f94, 0x3b3cce66, 0x704b65b9, 0x2d548633,
	0xab3a9f64, 0x0b2b2cc4, 0xe70ca856, 0xef5892be,
	0x76ee400c, 0x16062bf2, 0x80d2664d, 0x180d5d6c,
	0x03caa882, 0x012d31bf, 0xcc103220, 0x0aedf680,
	0x4fc51f56, 0xbe96f62e, 0x148abeb5, 0xafd5ae99,
	0x86123bd1, 0xd92a8df0, 0x9be7be7f, 0x16e050c8,
	0xdeb59d0b, 0x508a9a49, 0xfd37d9cb, 0x5b61eacb,
	0xd3316308, 0x14e63129, 0x0ec9c5ac, 0xb3257e14,
	0x8b47992a, 0x12c471a9, 0x0f26fb26, 0x72215626,
	0x57ccec18, 0x020f1d89, 0x083cea63, 0x55379b41,
	0x8329d4e4, 0x35895e3f, 0xd0ff52cd, 0x6df1266c,
	0x62475f94, 0xcc98337c, 0xdbfc72e6, 0x3ee06ca9,
	0x1b0b7484, 0xa79607fc, 0x686fd0e3, 0x0b284bbb,
	0x57a37d83, 0xd607393f, 0x1afca660, 0x6446ffc2,
	0x7a96fbf2, 0x976582ad, 0x3691bdf6, 0xa885a150,
	0xebcf3f55, 0x9f7f90b1, 0x2b2325ca, 0x7068c0cd,
	0x83bcb455, 0xa2674e2d, 0x2c5479b2, 0x6ef44f3e,
	0xdc022831, 0x9b37365f, 0xc665df15, 0xea2930e3,
	0xb00543af, 0x23749aa0, 0xbbfe51e6, 0x1217b7d3,
	0x11b716fa, 0x10b55b62, 0x73c49225, 0xe7f680ee,
	0x722d703a, 0xca90302f, 0x731199e3, 0xf4d61e27,
	0x28f121b8, 0xba07c8a4, 0xfd1e49ac, 0xf343454b,
	0x2fbb47da, 0x81c12f08, 0x94c651d6, 0x99a44769,
	0x8db8e6b4, 0x5b502544, 0x117a2391, 0xf46043c1,
	0x69154160, 0x501d2b27, 0x345a8d31, 0x578680d3,
	0xec9f4518, 0xa4b44fec, 0x8621871b, 0x7925bccb,
	0xe4553259, 0x31d25e9e, 0xb9f2e907, 0x54bea819,
	0x3f93a547, 0x77991877, 0x4baf5c17, 0x14070b8d,
	0xaf162811, 0x95a99073, 0x15d91667, 0xb5f78a16,
	0x16b9ee4e, 0x90780df3, 0x0267e6b4, 0xbada38c7,
	0x5cfcbcbd, 0x3f11b101, 0xb0964e71, 0x2e614795,
	0x3a92da8a, 0x4a85d5fa, 0xc61821bf, 0x33084375,
	0xd6100619, 0x9749149c, 0xa4407ce8, 0x25efd0a8,
	0x22f1152e, 0x4ac73c50, 0xe213e2e3, 0x302dfb62,
	0xa167476d, 0xa6c4bad3, 0xf55fda93, 0xd4c5fbbf,
	0xa26ac217, 0x1844b5f2, 0xcbd2d822, 0xd5f8adf8,
	0xf5692857, 0xeeba8af6, 0xd5dcddec, 0x98f67e3b,
	0xc4554d77, 0x20fbf701, 0x37fe4b12, 0x2cf77549,
	0x12967a5a, 0x86fcfeb3, 0x42010fcb, 0x71962975,
	0xaff8b637, 0x99321fb1, 0x42403661, 0x7b2da21f,
	0x4c42ba64, 0x291ed235, 0x6073e2d0, 0x187bfdd4,
	0x1bb9d029, 0xf0f6be49, 0x8ae91400, 0x6df802d9,
	0x6e78a833, 0xe9591383, 0xb9cde797, 0x14a80a97,
	0xf5a2bee0, 0x05a42879, 0xf0b872fe, 0x2791c253,
	0x46468091, 0xe683bfb5, 0xb36f8196, 0x242e57c3,
	0xa3ae06e8, 0xa95f9295, 0x2079c56d, 0x23a1ad91,
	0xa0f5b91c, 0xe6df204f, 0x06665ae2, 0x37262967,
}

// mtab is the multiplication table for the register feedback, built on
// the byte polynomial 0x14D and the word constant 0xd02b4367.
var mtab = [256]uint32{
	0x00000000, 0xd02b4367, 0xed5686ce, 0x3d7dc5a9,
	0x97ac41d1, 0x478702b6, 0x7afac71f, 0xaad18478,
	0x631582ef, 0xb33ec188, 0x8e430421, 0x5e684746,
	0xf4b9c33e, 0x24928059, 0x19ef45f0, 0xc9c40697,
	0xc62a4993, 0x16010af4, 0x2b7ccf5d, 0xfb578c3a,
	0x51860842, 0x81ad4b25, 0xbcd08e8c, 0x6cfbcdeb,
	0xa53fcb7c, 0x7514881b, 0x48694db2, 0x98420ed5,
	0x32938aad, 0xe2b8c9ca, 0xdfc50c63, 0x0fee4f04,
	0xc154926b, 0x117fd10c, 0x2c0214a5, 0xfc2957c2,
	0x56f8d3ba, 0x86d390dd, 0xbbae5574, 0x6b851613,
	0xa2411084, 0x726a53e3, 0x4f17964a, 0x9f3cd52d,
	0x35ed5155, 0xe5c61232, 0xd8bbd79b, 0x089094fc,
	0x077edbf8, 0xd755989f, 0xea285d36, 0x3a031e51,
	0x90d29a29, 0x40f9d94e, 0x7d841ce7, 0xadaf5f80,
	0x646b5917, 0xb4401a70, 0x893ddfd9, 0x59169cbe,
	0xf3c718c6, 0x23ec5ba1, 0x1e919e08, 0xcebadd6f,
	0xcfa869d6, 0x1f832ab1, 0x22feef18, 0xf2d5ac7f,
	0x58042807, 0x882f6b60, 0xb552aec9, 0x6579edae,
	0xacbdeb39, 0x7c96a85e, 0x41eb6df7, 0x91c02e90,
	0x3b11aae8, 0xeb3ae98f, 0xd6472c26, 0x066c6f41,
	0x09822045, 0xd9a96322, 0xe4d4a68b, 0x34ffe5ec,
	0x9e2e6194, 0x4e0522f3, 0x7378e75a, 0xa353a43d,
	0x6a97a2aa, 0xbabce1cd, 0x87c12464, 0x57ea6703,
	0xfd3be37b, 0x2d10a01c, 0x106d65b5, 0xc04626d2,
	0x0efcfbbd, 0xded7b8da, 0xe3aa7d73, 0x33813e14,
	0x9950ba6c, 0x497bf90b, 0x74063ca2, 0xa42d7fc5,
	0x6de97952, 0xbdc23a35, 0x80bfff9c, 0x5094bcfb,
	0xfa453883, 0x2a6e7be4, 0x1713be4d, 0xc738fd2a,
	0xc8d6b22e, 0x18fdf149, 0x258034e0, 0xf5ab7787,
	0x5f7af3ff, 0x8f51b098, 0xb22c7531, 0x62073656,
	0xabc330c1, 0x7be873a6, 0x4695b60f, 0x96bef568,
	0x3c6f7110, 0xec443277, 0xd139f7de, 0x0112b4b9,
	0xd31dd2e1, 0x03369186, 0x3e4b542f, 0xee601748,
	0x44b19330, 0x949ad057, 0xa9e715fe, 0x79cc5699,
	0xb008500e, 0x60231369, 0x5d5ed6c0, 0x8d7595a7,
	0x27a411df, 0xf78f52b8, 0xcaf29711, 0x1ad9d476,
	0x15379b72, 0xc51cd815, 0xf8611dbc, 0x284a5edb,
	0x829bdaa3, 0x52b099c4, 0x6fcd5c6d, 0xbfe61f0a,
	0x7622199d, 0xa6095afa, 0x9b749f53, 0x4b5fdc34,
	0xe18e584c, 0x31a51b2b, 0x0cd8de82, 0xdcf39de5,
	0x1249408a, 0xc26203ed, 0xff1fc644, 0x2f348523,
	0x85e5015b, 0x55ce423c, 0x68b38795, 0xb898c4f2,
	0x715cc265, 0xa1778102, 0x9c0a44ab, 0x4c2107cc,
	0xe6f083b4, 0x36dbc0d3, 0x0ba6057a, 0xdb8d461d,
	0xd4630919, 0x04484a7e, 0x39358fd7, 0xe91eccb0,
	0x43cf48c8, 0x93e40baf, 0xae99ce06, 0x7eb28d61,
	0xb7768bf6, 0x675dc891, 0x5a200d38, 0x8a0b4e5f,
	0x20daca27, 0xf0f18940, 0xcd8c4ce9, 0x1da70f8e,
	0x1cb5bb37, 0xcc9ef850, 0xf1e33df9, 0x21c87e9e,
	0x8b19fae6, 0x5b32b981, 0x664f7c28, 0xb6643f4f,
	0x7fa039d8, 0xaf8b7abf, 0x92f6bf16, 0x42ddfc71,
	0xe80c7809, 0x38273b6e, 0x055afec7, 0xd571bda0,
	0xda9ff2a4, 0x0ab4b1c3, 0x37c9746a, 0xe7e2370d,
	0x4d33b375, 0x9d18f012, 0xa06535bb, 0x704e76dc,
	0xb98a704b, 0x69a1332c, 0x54dcf685, 0x84f7b5e2,
	0x2e26319a, 0xfe0d72fd, 0xc370b754, 0x135bf433,
	0xdde1295c, 0x0dca6a3b, 0x30b7af92, 0xe09cecf5,
	0x4a4d688d, 0x9a662bea, 0xa71bee43, 0x7730ad24,
	0xbef4abb3, 0x6edfe8d4, 0x53a22d7d, 0x83896e1a,
	0x2958ea62, 0xf973a905, 0xc40e6cac, 0x14252fcb,
	0x1bcb60cf, 0xcbe023a8, 0xf69de601, 0x26b6a566,
	0x8c67211e, 0x5c4c6279, 0x6131a7d0, 0xb11ae4b7,
	0x78dee220, 0xa8f5a147, 0x958864ee, 0x45a32789,
	0xef72a3f1, 0x3f59e096, 0x0224253f, 0xd20f6658,
}
